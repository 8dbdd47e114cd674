package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Every statement is idempotent; Migrate runs them all on startup in order.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id            BIGINT AUTO_INCREMENT PRIMARY KEY,
	name          VARCHAR(255) NOT NULL,
	username      VARCHAR(100) NOT NULL UNIQUE,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	phone         VARCHAR(20) NULL,
	address       TEXT NULL,
	profile_image VARCHAR(500) NULL,
	created_at    DATETIME(6) NOT NULL,
	updated_at    DATETIME(6) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS loans (
	id                 BIGINT AUTO_INCREMENT PRIMARY KEY,
	loan_ulid          CHAR(26) NOT NULL UNIQUE,
	lender_id          BIGINT NOT NULL,
	borrower_id        BIGINT NOT NULL,
	loan_type          ENUM('money','object') NOT NULL,
	amount             DECIMAL(10,2) NULL,
	object_name        VARCHAR(255) NULL,
	object_description TEXT NULL,
	object_image       VARCHAR(500) NULL,
	loan_date          DATE NOT NULL,
	due_date           DATE NOT NULL,
	return_date        DATE NULL,
	status             ENUM('active','returned','overdue') NOT NULL DEFAULT 'active',
	notes              TEXT NULL,
	created_at         DATETIME(6) NOT NULL,
	updated_at         DATETIME(6) NOT NULL,
	INDEX idx_loans_lender (lender_id),
	INDEX idx_loans_borrower (borrower_id),
	INDEX idx_loans_status (status),
	INDEX idx_loans_due_date (due_date),
	CONSTRAINT fk_loans_lender FOREIGN KEY (lender_id) REFERENCES users(id) ON DELETE CASCADE,
	CONSTRAINT fk_loans_borrower FOREIGN KEY (borrower_id) REFERENCES users(id) ON DELETE CASCADE
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
	id         BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	title      VARCHAR(255) NOT NULL,
	message    TEXT NOT NULL,
	type       ENUM('info','warning','error','success') NOT NULL DEFAULT 'info',
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	loan_id    BIGINT NULL,
	created_at DATETIME(6) NOT NULL,
	INDEX idx_notifications_user (user_id),
	INDEX idx_notifications_read (is_read),
	INDEX idx_notifications_created (created_at),
	CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	CONSTRAINT fk_notifications_loan FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE SET NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	phone         TEXT NULL,
	address       TEXT NULL,
	profile_image TEXT NULL,
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS loans (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	loan_ulid          TEXT NOT NULL UNIQUE,
	lender_id          INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	borrower_id        INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	loan_type          TEXT NOT NULL CHECK (loan_type IN ('money','object')),
	amount             DECIMAL(10,2) NULL,
	object_name        TEXT NULL,
	object_description TEXT NULL,
	object_image       TEXT NULL,
	loan_date          DATE NOT NULL,
	due_date           DATE NOT NULL,
	return_date        DATE NULL,
	status             TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active','returned','overdue')),
	notes              TEXT NULL,
	created_at         DATETIME NOT NULL,
	updated_at         DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_lender ON loans(lender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_borrower ON loans(borrower_id)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_due_date ON loans(due_date)`,

	`CREATE TABLE IF NOT EXISTS notifications (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	type       TEXT NOT NULL DEFAULT 'info' CHECK (type IN ('info','warning','error','success')),
	is_read    INTEGER NOT NULL DEFAULT 0,
	loan_id    INTEGER NULL REFERENCES loans(id) ON DELETE SET NULL,
	created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(is_read)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at)`,
}

// Migrate creates the tables and indexes if they do not exist yet.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	var stmts []string
	switch conn.DriverName() {
	case DriverMySQL:
		stmts = mysqlSchema
	case DriverSQLite:
		stmts = sqliteSchema
	default:
		return fmt.Errorf("no schema for driver %q", conn.DriverName())
	}

	for i, q := range stmts {
		if _, err := conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// Ping reports whether the store is reachable.
func Ping(ctx context.Context, conn *sqlx.DB) bool {
	return conn.PingContext(ctx) == nil
}
