// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/wingman/pkg/storage/sqldb"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		sex           TEXT NOT NULL,
		age           INTEGER NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_windows (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL UNIQUE,
		user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		mode       TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS chat_windows_user ON chat_windows(user_id)`,
	`CREATE TABLE IF NOT EXISTS responses (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id        INTEGER REFERENCES users(id) ON DELETE SET NULL,
		chat_window_id TEXT REFERENCES chat_windows(id) ON DELETE SET NULL,
		prompt         TEXT NOT NULL,
		response       TEXT NOT NULL,
		created_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS responses_user ON responses(user_id)`,
}

// Driver implements storage.Driver using SQLite.
type Driver struct {
	*sqldb.Driver
}

// NewDriver creates a new SQLite-backed driver.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own database
	db.SetMaxOpenConns(1)

	// SQLite-specific pragmas
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	drv := sqldb.New(db, sqldb.Dialect{
		Schema:            schema,
		IsUniqueViolation: isUniqueViolation,
	})
	if err := drv.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Driver: drv}, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
