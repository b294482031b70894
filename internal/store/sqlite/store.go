// Package sqlite persists life events in a single-table SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Store owns the events table. A single *sql.DB connection pool is the
// only writer; no optimistic concurrency is layered on top (concurrent
// updates to the same id are last-write-wins on updated_at).
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	timestamp   TEXT NOT NULL,
	source      TEXT NOT NULL,
	type        TEXT NOT NULL,
	title       TEXT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '{}',
	linked_uris TEXT NOT NULL DEFAULT '[]',
	tags        TEXT NOT NULL DEFAULT '[]',
	mood        INTEGER,
	location    TEXT,
	duration    INTEGER,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_source ON events(source);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(type);
CREATE INDEX IF NOT EXISTS idx_events_tags ON events(tags);
`

// Open opens (creating if necessary) the SQLite database at path and
// ensures the events schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
