package importer

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupImportMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestCreateImport(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	now := time.Now()
	planID := 3
	job := &MemberImport{Type: TypeIndividual, BranchID: 1, CreatedBy: 2, FilePath: "/data/imports/a.csv", PlanID: &planID}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO member_imports (status, type, branch_id, created_by, file_path, plan_id, company_subscription_id)`)).
		WithArgs(TypeIndividual, 1, 2, "/data/imports/a.csv", &planID, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).AddRow(11, "pending", now, now))

	require.NoError(t, repo.Create(context.Background(), job))
	assert.Equal(t, 11, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImport(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM member_imports WHERE id = $1`)).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "status", "type", "branch_id", "created_by", "file_path", "plan_id", "company_subscription_id",
			"statistics", "error_message", "created_at", "updated_at",
		}).AddRow(11, "completed", "individual", 1, 2, "/data/a.csv", 3, nil,
			[]byte(`{"success_count":2,"failed_count":0,"total_processed":2}`), nil, now, now))

	job, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	require.NotNil(t, job.PlanID)
	assert.Equal(t, 3, *job.PlanID)
	assert.Nil(t, job.CompanySubscriptionID)

	var stats Statistics
	require.NoError(t, job.Statistics.Unmarshal(&stats))
	assert.Equal(t, 2, stats.SuccessCount)
}

func TestGetImport_NotFound(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM member_imports WHERE id = $1`)).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrImportNotFound)
}

func TestFinish(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE member_imports SET status = $1, statistics = $2, updated_at = NOW() WHERE id = $3`)).
		WithArgs(StatusCompletedWithErrors, `{"success_count":2,"failed_count":1,"total_processed":3}`, 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Finish(context.Background(), 11, StatusCompletedWithErrors, Statistics{SuccessCount: 2, FailedCount: 1, TotalProcessed: 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFail(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE member_imports SET status = 'failed', error_message = $1`)).
		WithArgs("branch 1: branch not found", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Fail(context.Background(), 11, "branch 1: branch not found"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateLog(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	entry := &MemberImportLog{
		MemberImportID: 11,
		RowNumber:      3,
		RowData:        types.JSONText(`{"name":"Jean Mugisha"}`),
		ErrorMessage:   "The email has already been taken.",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO member_import_logs (member_import_id, row_number, row_data, error_message)`)).
		WithArgs(11, 3, []byte(`{"name":"Jean Mugisha"}`), "The email has already been taken.").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_resolved", "created_at"}).AddRow(1, false, time.Now()))

	require.NoError(t, repo.CreateLog(context.Background(), entry))
	assert.Equal(t, 1, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnresolvedLogs(t *testing.T) {
	repo, mock, close := setupImportMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE member_import_id = $1 AND is_resolved = FALSE`)).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_import_id", "row_number", "row_data", "error_message", "is_resolved", "created_at"}).
			AddRow(1, 11, 3, []byte(`{"name":"Jean"}`), "bad", false, time.Now()))

	logs, err := repo.ListUnresolvedLogs(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 3, logs[0].RowNumber)
}
