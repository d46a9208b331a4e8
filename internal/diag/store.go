package diag

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS diagnostics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    at TEXT NOT NULL,
    counter TEXT NOT NULL,
    reason TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS diagnostics_at ON diagnostics (at);
`

// Store persists degraded-path events in SQLite so they survive the process
// and the CLI can list them later.
type Store struct {
	db         *sql.DB
	path       string
	maxRecords int
}

// OpenStore initializes or connects to the diagnostics journal.
func OpenStore(path string, maxRecords int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open diagnostics db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create diagnostics schema: %w", err)
	}

	return &Store{db: db, path: path, maxRecords: maxRecords}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location backing the journal.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record appends one journal row and prunes the oldest rows beyond the
// configured cap.
func (s *Store) Record(ctx context.Context, counter, reason, detail string) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diagnostics (at, counter, reason, detail) VALUES (?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), counter, reason, detail,
	)
	if err != nil {
		return fmt.Errorf("insert diagnostic: %w", err)
	}
	if s.maxRecords > 0 {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM diagnostics WHERE id NOT IN (SELECT id FROM diagnostics ORDER BY id DESC LIMIT ?)`,
			s.maxRecords,
		)
	}
	return nil
}

// Event is one persisted degraded-path observation.
type Event struct {
	ID      int64
	At      time.Time
	Counter string
	Reason  string
	Detail  string
}

// Recent returns the newest events, newest first. Limit 0 means 100.
func (s *Store) Recent(ctx context.Context, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, counter, reason, detail FROM diagnostics ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		var at string
		if err := rows.Scan(&evt.ID, &at, &evt.Counter, &evt.Reason, &evt.Detail); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, at); err == nil {
			evt.At = parsed
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
