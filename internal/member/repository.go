package member

import (
	"context"
	"database/sql"
	"errors"

	"fitnesspoint/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrMemberNotFound = errors.New("member not found")

// Unique constraint names from the members table, used to turn insert
// conflicts back into field errors.
const (
	ConstraintReference  = "members_reference_key"
	ConstraintEmail      = "members_email_key"
	ConstraintNationalID = "members_national_id_number_key"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members WHERE reference = $1)`, reference)
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members WHERE LOWER(email) = LOWER($1))`, email)
}

func (r *Repository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM members WHERE national_id_number = $1)`, nationalID)
}

// Create inserts m using q and fills in its generated columns.
func (r *Repository) Create(ctx context.Context, q db.DBTX, m *Member) error {
	return q.QueryRowxContext(ctx, `
		INSERT INTO members (
			reference, first_name, last_name, gender, date_of_birth, national_id_number,
			email, phone_code, phone_number, address, branch_id, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`,
		m.Reference, m.FirstName, m.LastName, m.Gender, m.DateOfBirth, m.NationalIDNumber,
		m.Email, m.PhoneCode, m.PhoneNumber, m.Address, m.BranchID, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id int) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
