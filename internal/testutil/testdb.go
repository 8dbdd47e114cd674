package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"loanbook-backend/internal/platform/db"
)

// NewTestDB opens an in-memory SQLite database with the schema applied.
// It is closed automatically when the test completes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Connect(context.Background(), db.DatabaseConfig{
		Driver: db.DriverSQLite,
		Path:   ":memory:",
	})
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}

	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})
	return conn
}

// FixedClock always reports the same instant.
type FixedClock struct{ T time.Time }

func (c *FixedClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// SeedUser inserts a user directly and returns its id.
func SeedUser(t *testing.T, conn *sqlx.DB, name, username string) int64 {
	t.Helper()

	now := db.Timestamp(time.Now())
	res, err := conn.Exec(`INSERT INTO users (name, username, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)`, name, username, username+"@example.com", "x", now, now)
	if err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return id
}

// SeedObjectLoan inserts an active object loan directly and returns its id.
func SeedObjectLoan(t *testing.T, conn *sqlx.DB, lenderID, borrowerID int64, objectName string) int64 {
	t.Helper()

	now := db.Timestamp(time.Now())
	res, err := conn.Exec(`INSERT INTO loans (loan_ulid, lender_id, borrower_id, loan_type, object_name, loan_date, due_date, status, created_at, updated_at)
VALUES (?, ?, ?, 'object', ?, '2024-06-01', '2024-06-30', 'active', ?, ?)`,
		fmt.Sprintf("SEED%022d", time.Now().UnixNano()), lenderID, borrowerID, objectName, now, now)
	if err != nil {
		t.Fatalf("seeding loan %s: %v", objectName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("seeding loan %s: %v", objectName, err)
	}
	return id
}
