package company

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var linkColumns = []string{"id", "company_subscription_id", "member_id", "status", "created_by", "created_at", "updated_at"}

func setupCompanyMock(t *testing.T) (*Repository, *sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, sqlxDB, mock, closer
}

func TestAttachMember_CreatesNewLink(t *testing.T) {
	repo, sqlxDB, mock, close := setupCompanyMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM company_subscription_members`)).
		WithArgs(4, 9).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO company_subscription_members`)).
		WithArgs(4, 9, 2).
		WillReturnRows(sqlmock.NewRows(linkColumns).AddRow(1, 4, 9, "active", 2, now, now))

	link, err := repo.AttachMember(context.Background(), sqlxDB, 4, 9, 2)
	require.NoError(t, err)
	require.Equal(t, 1, link.ID)
	require.Equal(t, MemberStatusActive, link.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachMember_ReactivatesInactiveLink(t *testing.T) {
	repo, sqlxDB, mock, close := setupCompanyMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM company_subscription_members`)).
		WithArgs(4, 9).
		WillReturnRows(sqlmock.NewRows(linkColumns).AddRow(6, 4, 9, "inactive", 2, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE company_subscription_members`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"status", "updated_at"}).AddRow("active", now))

	link, err := repo.AttachMember(context.Background(), sqlxDB, 4, 9, 2)
	require.NoError(t, err)
	require.Equal(t, 6, link.ID)
	require.Equal(t, MemberStatusActive, link.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachMember_AlreadyActive(t *testing.T) {
	repo, sqlxDB, mock, close := setupCompanyMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM company_subscription_members`)).
		WithArgs(4, 9).
		WillReturnRows(sqlmock.NewRows(linkColumns).AddRow(6, 4, 9, "active", 2, now, now))

	link, err := repo.AttachMember(context.Background(), sqlxDB, 4, 9, 2)
	require.NoError(t, err)
	require.Equal(t, 6, link.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSubscription_NotFound(t *testing.T) {
	repo, _, mock, close := setupCompanyMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM company_subscriptions`)).
		WithArgs(77).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSubscription(context.Background(), 77)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}
