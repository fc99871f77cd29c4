package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitnesspoint/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const subscriptionColumns = `id, member_id, plan_id, start_date, end_date, status, notes, branch_id, created_by, created_at, updated_at`

func (r *Repository) GetByID(ctx context.Context, id int) (*MemberSubscription, error) {
	sub := &MemberSubscription{}
	err := r.db.GetContext(ctx, sub, `SELECT `+subscriptionColumns+` FROM member_subscriptions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription %d: %w", id, err)
	}
	return sub, nil
}

func (r *Repository) ListByMember(ctx context.Context, memberID int) ([]MemberSubscription, error) {
	subs := []MemberSubscription{}
	err := r.db.SelectContext(ctx, &subs,
		`SELECT `+subscriptionColumns+` FROM member_subscriptions WHERE member_id = $1 ORDER BY created_at DESC`, memberID)
	return subs, err
}

// Create inserts sub and fills in its id and timestamps.
func (r *Repository) Create(ctx context.Context, q db.DBTX, sub *MemberSubscription) error {
	return q.QueryRowxContext(ctx, `
		INSERT INTO member_subscriptions (member_id, plan_id, start_date, end_date, status, notes, branch_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`,
		sub.MemberID, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.Notes, sub.BranchID, sub.CreatedBy,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
}

// ApplyRenewal writes the renewed term of sub back onto its existing row.
func (r *Repository) ApplyRenewal(ctx context.Context, q db.DBTX, sub *MemberSubscription) error {
	err := q.QueryRowxContext(ctx, `
		UPDATE member_subscriptions
		SET plan_id = $1, start_date = $2, end_date = $3, status = $4, notes = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, sub.PlanID, sub.StartDate, sub.EndDate, sub.Status, sub.Notes, sub.ID).Scan(&sub.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSubscriptionNotFound
	}
	return err
}

// Cancel marks the subscription cancelled and appends note to its notes.
func (r *Repository) Cancel(ctx context.Context, q db.DBTX, id int, note string) error {
	res, err := q.ExecContext(ctx, `
		UPDATE member_subscriptions
		SET status = 'cancelled',
			notes = CASE WHEN notes IS NULL OR notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
			updated_at = NOW()
		WHERE id = $1
	`, id, note)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
