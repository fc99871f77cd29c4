package subscription

import (
	"time"

	"fitnesspoint/internal/billing"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusExpired    Status = "expired"
	StatusCancelled  Status = "cancelled"
	StatusRejected   Status = "rejected"
)

// RenewalType classifies a renewal request against the current term.
type RenewalType string

const (
	RenewalNew     RenewalType = "new"
	RenewalExpired RenewalType = "expired_renewal"
	RenewalEarly   RenewalType = "early_renewal"
	RenewalPre     RenewalType = "pre_renewal"
)

// EarlyRenewalWindowDays is how close to expiry an in-progress subscription
// must be for a renewal to count as early rather than pre.
const EarlyRenewalWindowDays = 7

type MemberSubscription struct {
	ID        int        `db:"id" json:"id"`
	MemberID  int        `db:"member_id" json:"member_id"`
	PlanID    int        `db:"plan_id" json:"plan_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
	Status    Status     `db:"status" json:"status"`
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	BranchID  int        `db:"branch_id" json:"branch_id"`
	CreatedBy int        `db:"created_by" json:"created_by"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// AppendNote adds line to the end of the notes log.
func (s *MemberSubscription) AppendNote(line string) {
	if s.Notes == nil || *s.Notes == "" {
		s.Notes = &line
		return
	}
	joined := *s.Notes + "\n" + line
	s.Notes = &joined
}

// TransitionKind tells callers whether a lifecycle change kept the row or
// replaced it.
type TransitionKind string

const (
	// TransitionMutated: the existing row was updated in place.
	TransitionMutated TransitionKind = "mutated"
	// TransitionReplaced: a new row was created and the previous one cancelled.
	TransitionReplaced TransitionKind = "replaced"
)

type Transition struct {
	Kind                   TransitionKind `json:"kind"`
	SubscriptionID         int            `json:"subscription_id"`
	PreviousSubscriptionID int            `json:"previous_subscription_id"`
}

type RenewalResult struct {
	Subscription *MemberSubscription `json:"subscription"`
	Invoice      *billing.Invoice    `json:"invoice"`
	RenewalType  RenewalType         `json:"renewal_type"`
	StartDate    time.Time           `json:"start_date"`
	EndDate      time.Time           `json:"end_date"`
	Transition   Transition          `json:"transition"`
}

type UpgradeResult struct {
	Subscription *MemberSubscription `json:"subscription"`
	Invoice      *billing.Invoice    `json:"invoice"`
	Proration    Proration           `json:"proration"`
	Transition   Transition          `json:"transition"`
}

type RenewalPreview struct {
	SubscriptionID int         `json:"subscription_id"`
	RenewalType    RenewalType `json:"renewal_type"`
	CanRenew       bool        `json:"can_renew"`
	StartDate      time.Time   `json:"start_date"`
}
