package company

import (
	"context"
	"database/sql"
	"errors"

	"fitnesspoint/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrSubscriptionNotFound = errors.New("company subscription not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetSubscription(ctx context.Context, id int) (*Subscription, error) {
	s := &Subscription{}
	err := r.db.GetContext(ctx, s, `
		SELECT id, company_id, plan_id, start_date, end_date, status, created_at
		FROM company_subscriptions
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AttachMember links a member to a company subscription. An existing inactive
// link is reactivated instead of inserting a duplicate.
func (r *Repository) AttachMember(ctx context.Context, q db.DBTX, companySubscriptionID, memberID, createdBy int) (*SubscriptionMember, error) {
	link := &SubscriptionMember{}
	err := q.GetContext(ctx, link, `
		SELECT id, company_subscription_id, member_id, status, created_by, created_at, updated_at
		FROM company_subscription_members
		WHERE company_subscription_id = $1 AND member_id = $2
		FOR UPDATE
	`, companySubscriptionID, memberID)

	switch {
	case err == nil:
		if link.Status == MemberStatusActive {
			return link, nil
		}
		err = q.QueryRowxContext(ctx, `
			UPDATE company_subscription_members
			SET status = 'active', updated_at = NOW()
			WHERE id = $1
			RETURNING status, updated_at
		`, link.ID).Scan(&link.Status, &link.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return link, nil

	case errors.Is(err, sql.ErrNoRows):
		link = &SubscriptionMember{}
		err = q.QueryRowxContext(ctx, `
			INSERT INTO company_subscription_members (company_subscription_id, member_id, status, created_by)
			VALUES ($1, $2, 'active', $3)
			RETURNING id, company_subscription_id, member_id, status, created_by, created_at, updated_at
		`, companySubscriptionID, memberID, createdBy).StructScan(link)
		if err != nil {
			return nil, err
		}
		return link, nil

	default:
		return nil, err
	}
}
