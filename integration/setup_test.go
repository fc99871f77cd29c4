package integration_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	"fitnesspoint/internal/db"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	database, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: cannot connect to test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database, "../migrations"))
	cleanDatabase(t, database)
	return database
}

func cleanDatabase(t *testing.T, database *sqlx.DB) {
	tables := []string{
		"member_import_logs",
		"member_imports",
		"company_subscription_members",
		"company_subscriptions",
		"companies",
		"member_subscription_invoices",
		"member_subscriptions",
		"members",
		"plans",
		"duration_types",
		"currencies",
		"rate_types",
		"tax_rates",
		"discount_types",
		"users",
		"branches",
	}

	for _, table := range tables {
		_, err := database.Exec(fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", table))
		require.NoError(t, err, "Failed to clean table "+table)
	}
}

type fixture struct {
	BranchID int
	UserID   int
	PlanID   int
	RateType int
	TaxRate  int
}

func insertID(t *testing.T, database *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var id int
	require.NoError(t, database.QueryRow(query, args...).Scan(&id))
	return id
}

func seed(t *testing.T, database *sqlx.DB) fixture {
	var f fixture
	f.BranchID = insertID(t, database, `INSERT INTO branches (name) VALUES ('Kigali Heights') RETURNING id`)
	f.UserID = insertID(t, database,
		`INSERT INTO users (name, email, role, branch_id) VALUES ('Front Desk', 'desk@fitnesspoint.rw', 'manager', $1) RETURNING id`,
		f.BranchID)

	currency := insertID(t, database, `INSERT INTO currencies (code, name) VALUES ('RWF', 'Rwandan Franc') RETURNING id`)
	monthly := insertID(t, database, `INSERT INTO duration_types (name, unit) VALUES ('Monthly', 'months') RETURNING id`)
	f.PlanID = insertID(t, database,
		`INSERT INTO plans (label, price, currency_id, duration, duration_type_id) VALUES ('Gold', 30000, $1, 1, $2) RETURNING id`,
		currency, monthly)

	f.RateType = insertID(t, database, `INSERT INTO rate_types (name) VALUES ('Standard') RETURNING id`)
	f.TaxRate = insertID(t, database, `INSERT INTO tax_rates (name, rate) VALUES ('VAT', 18) RETURNING id`)
	return f
}

func insertPlan(t *testing.T, database *sqlx.DB, label string, price int) int {
	return insertID(t, database,
		`INSERT INTO plans (label, price, currency_id, duration, duration_type_id)
		 SELECT $1, $2, currency_id, duration, duration_type_id FROM plans ORDER BY id LIMIT 1
		 RETURNING id`,
		label, price)
}

func insertSubscription(t *testing.T, database *sqlx.DB, f fixture, status string, start time.Time, end *time.Time) int {
	memberID := insertID(t, database,
		`INSERT INTO members (reference, first_name, branch_id, created_by)
		 VALUES ('MBR-2026-' || lpad((floor(random() * 99999))::text, 5, '0'), 'Aline', $1, $2) RETURNING id`,
		f.BranchID, f.UserID)
	return insertID(t, database,
		`INSERT INTO member_subscriptions (member_id, plan_id, start_date, end_date, status, branch_id, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		memberID, f.PlanID, start, end, status, f.BranchID, f.UserID)
}
