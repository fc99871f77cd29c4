package plan

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var planColumns = []string{
	"id", "label", "price", "currency_id", "duration", "status", "created_at",
	"duration_type.id", "duration_type.name", "duration_type.unit",
}

func setupPlanMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() { sqlxDB.Close() }
	return repo, mock, closer
}

func TestGetByID(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(3, "Gold Monthly", "45000.00", 1, 1, "active", time.Now(), 2, "Monthly", "months"))

	p, err := repo.GetByID(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "Gold Monthly", p.Label)
	require.True(t, decimal.RequireFromString("45000").Equal(p.Price))
	require.Equal(t, UnitMonths, p.DurationType.Unit)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.id = $1`)).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.GetByID(context.Background(), 99)
	require.ErrorIs(t, err, ErrPlanNotFound)
	require.Nil(t, p)
}

func TestListActive(t *testing.T) {
	repo, mock, close := setupPlanMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.status = 'active'`)).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(1, "Weekly", "8000.00", 1, 1, "active", time.Now(), 1, "Weekly", "weeks").
			AddRow(2, "Annual", "400000.00", 1, 1, "active", time.Now(), 3, "Yearly", "years"))

	plans, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	require.Equal(t, UnitYears, plans[1].DurationType.Unit)
}
