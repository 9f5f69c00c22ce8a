// Package store is a small persistent key-value cache backed by SQLite or
// Redis. Values are stored as JSON. Reads and writes are best effort: failures
// are logged and reported as false rather than returned.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrSerialization is returned when a cached value is not valid JSON.
var ErrSerialization = errors.New("serialization failure")

// ErrNotFound is returned by LoadRaw for a missing key.
var ErrNotFound = errors.New("key not found")

// KV is the cache API shared by the SQLite and Redis backends.
type KV interface {
	Save(key string, v any) bool
	Load(key string, out any) bool
	LoadRaw(key string) (json.RawMessage, error)
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

var (
	_ KV = (*Store)(nil)
	_ KV = (*Redis)(nil)
)

// Open returns a Redis cache for redis:// and rediss:// URLs and a SQLite
// cache for anything else, creating the parent directory of the file.
func Open(target string) (KV, error) {
	if strings.HasPrefix(target, "redis://") || strings.HasPrefix(target, "rediss://") {
		r, err := NewRedis(target)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	if target != ":memory:" {
		if dir := filepath.Dir(target); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create cache dir: %w", err)
			}
		}
	}
	s, err := New(target)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Store is the SQLite cache.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save JSON-encodes v and upserts it under key.
func (s *Store) Save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("cache save failed", "key", key, "error", err)
		return false
	}
	_, err = s.db.Exec(
		`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), s.now().UTC(),
	)
	if err != nil {
		slog.Error("cache save failed", "key", key, "error", err)
		return false
	}
	return true
}

// LoadRaw returns the stored JSON for key. It returns ErrNotFound for a
// missing key and wraps ErrSerialization when the stored text is not JSON.
func (s *Store) LoadRaw(key string) (json.RawMessage, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !json.Valid([]byte(value)) {
		return nil, fmt.Errorf("load %s: %w", key, ErrSerialization)
	}
	return json.RawMessage(value), nil
}

// Load decodes the value stored under key into out. A missing key leaves out
// untouched and returns false; so does any read or decode failure.
func (s *Store) Load(key string, out any) bool {
	raw, err := s.LoadRaw(key)
	return decode(key, raw, err, out)
}

func decode(key string, raw json.RawMessage, err error, out any) bool {
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		slog.Error("cache load failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Error("cache load failed", "key", key, "error", fmt.Errorf("%w: %v", ErrSerialization, err))
		return false
	}
	return true
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	_, err := s.db.Exec(`DELETE FROM cache WHERE key = ?`, key)
	return err
}

// Keys lists stored keys in lexical order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM cache ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// UpdatedAt returns when key was last written.
func (s *Store) UpdatedAt(key string) (time.Time, bool) {
	var t time.Time
	err := s.db.QueryRow(`SELECT updated_at FROM cache WHERE key = ?`, key).Scan(&t)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// putRaw stores text without encoding. Used by tests to plant corrupt values.
func (s *Store) putRaw(key, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, text, s.now().UTC(),
	)
	return err
}
