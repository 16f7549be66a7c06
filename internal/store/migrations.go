package store

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for all tomoflow tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		raw          TEXT NOT NULL,
		steps        TEXT NOT NULL,
		edges        TEXT NOT NULL,
		exec_order   TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL,
		FOREIGN KEY (template_id) REFERENCES templates(id)
	)`,

	// Step completions reported by the orchestrating host. Completion is
	// monotone: rows are only ever inserted.
	`CREATE TABLE IF NOT EXISTS completions (
		session_id   TEXT NOT NULL,
		step_id      TEXT NOT NULL,
		completed_at TEXT NOT NULL,
		PRIMARY KEY (session_id, step_id),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_template_id ON sessions(template_id)`,
	`CREATE INDEX IF NOT EXISTS idx_completions_session_id ON completions(session_id)`,
}

// migrate applies all schema statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// Name the failing table in the error for quicker diagnosis.
			table := ""
			if i := strings.Index(stmt, "EXISTS "); i >= 0 {
				rest := stmt[i+len("EXISTS "):]
				if j := strings.IndexAny(rest, " (\n"); j > 0 {
					table = rest[:j]
				}
			}
			return &migrationError{Table: table, Err: err}
		}
	}
	return nil
}

type migrationError struct {
	Table string
	Err   error
}

func (e *migrationError) Error() string {
	if e.Table == "" {
		return "migration failed: " + e.Err.Error()
	}
	return "migration failed for " + e.Table + ": " + e.Err.Error()
}

func (e *migrationError) Unwrap() error { return e.Err }
