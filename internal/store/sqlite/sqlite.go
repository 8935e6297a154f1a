package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"updatenotifier/internal/store"
)

// DB implements store.Store on SQLite (modernc.org/sqlite, CGO-free).
// The DSN is a file path; ":memory:" works for a single connection.
type DB struct {
	db *sql.DB
}

// New opens the database at path and creates the schema.
func New(ctx context.Context, path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	// busy timeout helps when two CLIs start at once; as a DSN pragma it
	// applies to every pooled connection
	d, err := sql.Open("sqlite", p+"?_pragma=busy_timeout(3000)")
	if err != nil {
		return nil, err
	}
	if p == ":memory:" {
		d.SetMaxOpenConns(1)
	}

	s := &DB{db: d}
	if err := s.EnsureSchema(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return s, nil
}

func (s *DB) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS check_state(
			app_id TEXT PRIMARY KEY,
			last_checked TEXT NOT NULL,
			latest_version TEXT NOT NULL DEFAULT ''
		);`)
	return err
}

func (s *DB) Get(ctx context.Context, appID string) (store.CheckState, error) {
	var st store.CheckState
	var lastChecked string
	err := s.db.QueryRowContext(ctx,
		`SELECT last_checked, latest_version FROM check_state WHERE app_id = ?;`, appID).
		Scan(&lastChecked, &st.LatestVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return st, store.ErrNotFound
	}
	if err != nil {
		return st, err
	}
	st.LastChecked, err = time.Parse(time.RFC3339Nano, lastChecked)
	if err != nil {
		return st, fmt.Errorf("parse last_checked for %s: %w", appID, err)
	}
	return st, nil
}

func (s *DB) Set(ctx context.Context, appID string, state store.CheckState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_state(app_id, last_checked, latest_version)
		VALUES(?, ?, ?)
		ON CONFLICT(app_id) DO UPDATE SET
			last_checked=excluded.last_checked,
			latest_version=excluded.latest_version;`,
		appID, state.LastChecked.UTC().Format(time.RFC3339Nano), state.LatestVersion)
	return err
}

func (s *DB) Close() error { return s.db.Close() }
