package company

import "time"

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Subscription is a plan bought by a company for a group of members.
type Subscription struct {
	ID        int        `db:"id" json:"id"`
	CompanyID int        `db:"company_id" json:"company_id"`
	PlanID    int        `db:"plan_id" json:"plan_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status    string     `db:"status" json:"status"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type SubscriptionMember struct {
	ID                    int          `db:"id" json:"id"`
	CompanySubscriptionID int          `db:"company_subscription_id" json:"company_subscription_id"`
	MemberID              int          `db:"member_id" json:"member_id"`
	Status                MemberStatus `db:"status" json:"status"`
	CreatedBy             int          `db:"created_by" json:"created_by"`
	CreatedAt             time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `db:"updated_at" json:"updated_at"`
}
