package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrImportNotFound = errors.New("import not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const importColumns = `id, status, type, branch_id, created_by, file_path, plan_id, company_subscription_id, statistics, error_message, created_at, updated_at`

// Create inserts a pending job and fills in its id and timestamps.
func (r *Repository) Create(ctx context.Context, job *MemberImport) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO member_imports (status, type, branch_id, created_by, file_path, plan_id, company_subscription_id)
		VALUES ('pending', $1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at, updated_at
	`, job.Type, job.BranchID, job.CreatedBy, job.FilePath, job.PlanID, job.CompanySubscriptionID,
	).Scan(&job.ID, &job.Status, &job.CreatedAt, &job.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id int) (*MemberImport, error) {
	job := &MemberImport{}
	err := r.db.GetContext(ctx, job, `SELECT `+importColumns+` FROM member_imports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrImportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import %d: %w", id, err)
	}
	return job, nil
}

func (r *Repository) MarkInProgress(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE member_imports
		SET status = 'in_progress', error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

// Finish records the final status and row statistics of a job.
func (r *Repository) Finish(ctx context.Context, id int, status Status, stats Statistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE member_imports
		SET status = $1, statistics = $2, updated_at = NOW()
		WHERE id = $3
	`, status, string(data), id)
	return err
}

func (r *Repository) Fail(ctx context.Context, id int, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE member_imports
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, message, id)
	return err
}

func (r *Repository) CreateLog(ctx context.Context, entry *MemberImportLog) error {
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO member_import_logs (member_import_id, row_number, row_data, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_resolved, created_at
	`, entry.MemberImportID, entry.RowNumber, entry.RowData, entry.ErrorMessage,
	).Scan(&entry.ID, &entry.IsResolved, &entry.CreatedAt)
}

func (r *Repository) ListUnresolvedLogs(ctx context.Context, importID int) ([]MemberImportLog, error) {
	var logs []MemberImportLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT id, member_import_id, row_number, row_data, error_message, is_resolved, created_at
		FROM member_import_logs
		WHERE member_import_id = $1 AND is_resolved = FALSE
		ORDER BY row_number
	`, importID)
	return logs, err
}
