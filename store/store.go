// Package store is the persisted key/value collaborator: three logical blobs
// (settings, decision snapshot, rescan token) in one SQLite table, plus a
// poll-and-debounce watcher that turns writes into change notifications.
//
// Every operation is fallible but never fatal to the engine: a failed load
// degrades to defaults, a failed save is logged and dropped.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Logical keys. Any rev bump of KeyRescan is a signal; its value is ignored.
const (
	KeySettings  = "settings"
	KeyDecisions = "decisions"
	KeyRescan    = "rescan"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	rev        INTEGER NOT NULL DEFAULT 1,
	updated_at INTEGER NOT NULL
);
`

// Store is the SQLite-backed byte store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path, applying the production
// pragmas (WAL, busy_timeout, synchronous NORMAL, foreign_keys) and the
// schema. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Load returns the blob stored under key, or (nil, nil) when absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", key, err)
	}
	return value, nil
}

// Save upserts the blob under key, bumping its revision. The revision bump
// is what the watcher observes.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, rev, updated_at) VALUES (?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			rev = kv.rev + 1,
			updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: save %s: %w", key, err)
	}
	return nil
}

// Touch writes a throwaway value under key. Used for signal keys where only
// the revision bump matters.
func (s *Store) Touch(ctx context.Context, key string) error {
	return s.Save(ctx, key, []byte(strconv.FormatInt(time.Now().UnixMilli(), 10)))
}

// revs reads the current revision of every key.
func (s *Store) revs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, rev FROM kv`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key string
		var rev int64
		if err := rows.Scan(&key, &rev); err != nil {
			return nil, err
		}
		out[key] = rev
	}
	return out, rows.Err()
}
