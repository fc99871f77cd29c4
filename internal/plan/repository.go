package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPlanNotFound = errors.New("plan not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const selectPlan = `
		SELECT p.id, p.label, p.price, p.currency_id, p.duration, p.status, p.created_at,
		       dt.id AS "duration_type.id", dt.name AS "duration_type.name", dt.unit AS "duration_type.unit"
		FROM plans p
		JOIN duration_types dt ON dt.id = p.duration_type_id
`

// GetByID loads a plan together with its duration type.
func (r *Repository) GetByID(ctx context.Context, id int) (*Plan, error) {
	p := &Plan{}
	err := r.db.GetContext(ctx, p, selectPlan+`		WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]Plan, error) {
	plans := []Plan{}
	err := r.db.SelectContext(ctx, &plans, selectPlan+`		WHERE p.status = 'active'
		ORDER BY p.price ASC`)
	return plans, err
}
