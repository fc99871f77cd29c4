package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Unit is how a plan's duration count is interpreted.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
	UnitYears  Unit = "years"
)

type DurationType struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Unit Unit   `db:"unit" json:"unit"`
}

type Plan struct {
	ID           int             `db:"id" json:"id"`
	Label        string          `db:"label" json:"label"`
	Price        decimal.Decimal `db:"price" json:"price"`
	CurrencyID   int             `db:"currency_id" json:"currency_id"`
	Duration     int             `db:"duration" json:"duration"`
	Status       Status          `db:"status" json:"status"`
	DurationType DurationType    `db:"duration_type" json:"duration_type"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// EndDate is the calendar end of a term of this plan starting at start.
func (p *Plan) EndDate(start time.Time) (time.Time, error) {
	return AddDuration(start, p.Duration, p.DurationType.Unit)
}

// TermDays is the plan's term length under the fixed 30/365 day approximation.
func (p *Plan) TermDays() (int, error) {
	return DurationInDays(p.Duration, p.DurationType.Unit)
}
