// Package store persists documents and carts in SQLite. It applies the
// production pragma set (WAL, busy_timeout, foreign_keys) via EXEC so it
// works with any database/sql SQLite driver; callers blank-import
// modernc.org/sqlite.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Store wraps an SQLite database holding documents and carts.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, applies pragmas and runs
// migrations. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenMemory opens an in-memory database for testing. MaxOpenConns is
// pinned to 1 so every query hits the same in-memory database, and the
// handle is closed via t.Cleanup.
func OpenMemory(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	s.db.SetMaxOpenConns(1)
	t.Cleanup(func() { s.Close() })
	return s
}

// DB returns the underlying handle for sharing with other layers.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init() error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if err := s.migrate(); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
    id            TEXT PRIMARY KEY,
    owner         TEXT NOT NULL,
    title         TEXT NOT NULL,
    source_kind   TEXT NOT NULL,
    original_ref  TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'processing',
    toc           TEXT,
    sections      TEXT,
    images        TEXT,
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS carts (
    id            TEXT PRIMARY KEY,
    owner         TEXT NOT NULL,
    document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
    name          TEXT NOT NULL,
    snippets      TEXT NOT NULL DEFAULT '[]',
    created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner);
CREATE INDEX IF NOT EXISTS idx_carts_owner     ON carts(owner);
CREATE INDEX IF NOT EXISTS idx_carts_document  ON carts(document_id);
`
	_, err := s.db.Exec(ddl)
	return err
}
