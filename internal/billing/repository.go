package billing

import (
	"context"
	"database/sql"
	"errors"

	"fitnesspoint/internal/db"

	"github.com/jmoiron/sqlx"
)

var (
	ErrRateTypeNotFound     = errors.New("rate type not found")
	ErrTaxRateNotFound      = errors.New("tax rate not found")
	ErrDiscountTypeNotFound = errors.New("discount type not found")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetRateType(ctx context.Context, id int) (*RateType, error) {
	rt := &RateType{}
	err := r.db.GetContext(ctx, rt, `SELECT id, name FROM rate_types WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRateTypeNotFound
	}
	return rt, err
}

func (r *Repository) GetTaxRate(ctx context.Context, id int) (*TaxRate, error) {
	tr := &TaxRate{}
	err := r.db.GetContext(ctx, tr, `SELECT id, name, rate FROM tax_rates WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaxRateNotFound
	}
	return tr, err
}

func (r *Repository) GetDiscountType(ctx context.Context, id int) (*DiscountType, error) {
	dt := &DiscountType{}
	err := r.db.GetContext(ctx, dt, `SELECT id, name FROM discount_types WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountTypeNotFound
	}
	return dt, err
}

// CreateInvoice inserts inv and fills in its id, status and created_at.
func (r *Repository) CreateInvoice(ctx context.Context, q db.DBTX, inv *Invoice) error {
	return q.QueryRowxContext(ctx, `
		INSERT INTO member_subscription_invoices (
			member_subscription_id, reference, rate_type_id, tax_rate_id, discount_type_id,
			invoice_date, from_date, to_date, due_date,
			amount, proration_amount, tax_amount, discount_amount, total_amount,
			status, action, is_sent, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 'pending', $15, FALSE, $16)
		RETURNING id, status, is_sent, created_at
	`,
		inv.MemberSubscriptionID, inv.Reference, inv.RateTypeID, inv.TaxRateID, inv.DiscountTypeID,
		inv.InvoiceDate, inv.FromDate, inv.ToDate, inv.DueDate,
		inv.Amount, inv.ProrationAmount, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount,
		inv.Action, inv.CreatedBy,
	).Scan(&inv.ID, &inv.Status, &inv.IsSent, &inv.CreatedAt)
}

func (r *Repository) MarkSent(ctx context.Context, invoiceID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE member_subscription_invoices
		SET is_sent = TRUE
		WHERE id = $1
	`, invoiceID)
	return err
}

func (r *Repository) ListBySubscription(ctx context.Context, subscriptionID int) ([]Invoice, error) {
	invoices := []Invoice{}
	err := r.db.SelectContext(ctx, &invoices, `
		SELECT *
		FROM member_subscription_invoices
		WHERE member_subscription_id = $1
		ORDER BY created_at DESC
	`, subscriptionID)
	return invoices, err
}
