package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/tomoflow/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a
// Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL for concurrent readers while the host reports completions.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Template CRUD ---

func (s *SQLiteStore) CreateTemplate(ctx context.Context, tpl *model.Template) error {
	s.logger.Debug("sql", "op", "insert", "table", "templates", "id", tpl.ID)

	stepsJSON, err := json.Marshal(tpl.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	edgesJSON, err := json.Marshal(tpl.Edges)
	if err != nil {
		return fmt.Errorf("marshal edges: %w", err)
	}
	orderJSON, err := json.Marshal(tpl.Order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, raw, steps, edges, exec_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ID, tpl.Name, tpl.Raw,
		string(stepsJSON), string(edgesJSON), string(orderJSON),
		tpl.CreatedAt.Format(time.RFC3339Nano), tpl.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id string) (*model.Template, error) {
	s.logger.Debug("sql", "op", "select", "table", "templates", "id", id)

	var tpl model.Template
	var stepsJSON, edgesJSON, orderJSON string
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, raw, steps, edges, exec_order, created_at, updated_at
		 FROM templates WHERE id = ?`, id,
	).Scan(&tpl.ID, &tpl.Name, &tpl.Raw, &stepsJSON, &edgesJSON, &orderJSON, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stepsJSON), &tpl.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal steps: %w", err)
	}
	if err := json.Unmarshal([]byte(edgesJSON), &tpl.Edges); err != nil {
		return nil, fmt.Errorf("unmarshal edges: %w", err)
	}
	if err := json.Unmarshal([]byte(orderJSON), &tpl.Order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	tpl.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	tpl.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &tpl, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context, opts model.ListOptions) ([]*model.Template, int, error) {
	opts.Clamp()
	s.logger.Debug("sql", "op", "select", "table", "templates", "limit", opts.Limit, "offset", opts.Offset, "name", opts.Name)

	// The name filter matches substrings; an empty filter matches everything.
	pattern := "%" + opts.Name + "%"

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM templates WHERE name LIKE ?`, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, raw, steps, edges, exec_order, created_at, updated_at
		 FROM templates WHERE name LIKE ?
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		pattern, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.Template
	for rows.Next() {
		var tpl model.Template
		var stepsJSON, edgesJSON, orderJSON string
		var createdAt, updatedAt string
		if err := rows.Scan(&tpl.ID, &tpl.Name, &tpl.Raw, &stepsJSON, &edgesJSON, &orderJSON, &createdAt, &updatedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(stepsJSON), &tpl.Steps); err != nil {
			return nil, 0, fmt.Errorf("unmarshal steps: %w", err)
		}
		if err := json.Unmarshal([]byte(edgesJSON), &tpl.Edges); err != nil {
			return nil, 0, fmt.Errorf("unmarshal edges: %w", err)
		}
		if err := json.Unmarshal([]byte(orderJSON), &tpl.Order); err != nil {
			return nil, 0, fmt.Errorf("unmarshal order: %w", err)
		}
		tpl.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		tpl.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
		out = append(out, &tpl)
	}
	return out, total, rows.Err()
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "templates", "id", id)
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- Execution sessions ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.ExecutionSession) error {
	s.logger.Debug("sql", "op", "insert", "table", "sessions", "id", sess.ID)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, template_id, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.TemplateID,
		sess.CreatedAt.Format(time.RFC3339Nano), sess.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.ExecutionSession, error) {
	s.logger.Debug("sql", "op", "select", "table", "sessions", "id", id)

	var sess model.ExecutionSession
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, template_id, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.TemplateID, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT step_id FROM completions WHERE session_id = ? ORDER BY completed_at, step_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var stepID string
		if err := rows.Scan(&stepID); err != nil {
			return nil, err
		}
		sess.Completed = append(sess.Completed, stepID)
	}
	return &sess, rows.Err()
}

func (s *SQLiteStore) ListSessionsByTemplate(ctx context.Context, templateID string) ([]*model.ExecutionSession, error) {
	s.logger.Debug("sql", "op", "select", "table", "sessions", "template_id", templateID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM sessions WHERE template_id = ? ORDER BY created_at, id`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*model.ExecutionSession, 0, len(ids))
	for _, id := range ids {
		sess, err := s.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// MarkCompleted records host-reported completions. Re-reporting a step is a
// no-op, so the host may retry after a crash without corrupting state.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, sessionID string, stepIDs []string) error {
	s.logger.Debug("sql", "op", "insert", "table", "completions", "session", sessionID, "steps", len(stepIDs))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, stepID := range stepIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO completions (session_id, step_id, completed_at) VALUES (?, ?, ?)`,
			sessionID, stepID, now); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET updated_at = ? WHERE id = ?`, now, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}
