package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Action string

const (
	ActionNew     Action = "new"
	ActionRenew   Action = "renew"
	ActionUpgrade Action = "upgrade"
)

type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// PercentageDiscount is the discount type name that switches a discount from
// a flat amount to a percentage.
const PercentageDiscount = "Percentage"

type RateType struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type TaxRate struct {
	ID   int             `db:"id" json:"id"`
	Name string          `db:"name" json:"name"`
	Rate decimal.Decimal `db:"rate" json:"rate"`
}

type DiscountType struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

func (d *DiscountType) IsPercentage() bool {
	return d != nil && d.Name == PercentageDiscount
}

type Invoice struct {
	ID                   int                 `db:"id" json:"id"`
	MemberSubscriptionID int                 `db:"member_subscription_id" json:"member_subscription_id"`
	Reference            string              `db:"reference" json:"reference"`
	RateTypeID           int                 `db:"rate_type_id" json:"rate_type_id"`
	TaxRateID            int                 `db:"tax_rate_id" json:"tax_rate_id"`
	DiscountTypeID       *int                `db:"discount_type_id" json:"discount_type_id,omitempty"`
	InvoiceDate          time.Time           `db:"invoice_date" json:"invoice_date"`
	FromDate             time.Time           `db:"from_date" json:"from_date"`
	ToDate               *time.Time          `db:"to_date" json:"to_date,omitempty"`
	DueDate              time.Time           `db:"due_date" json:"due_date"`
	Amount               decimal.Decimal     `db:"amount" json:"amount"`
	ProrationAmount      decimal.NullDecimal `db:"proration_amount" json:"proration_amount"`
	TaxAmount            decimal.Decimal     `db:"tax_amount" json:"tax_amount"`
	DiscountAmount       decimal.Decimal     `db:"discount_amount" json:"discount_amount"`
	TotalAmount          decimal.Decimal     `db:"total_amount" json:"total_amount"`
	Status               InvoiceStatus       `db:"status" json:"status"`
	Action               Action              `db:"action" json:"action"`
	IsSent               bool                `db:"is_sent" json:"is_sent"`
	CreatedBy            int                 `db:"created_by" json:"created_by"`
	CreatedAt            time.Time           `db:"created_at" json:"created_at"`
}
