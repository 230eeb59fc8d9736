package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/finmanager-golang/internal/database"
)

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// SQLStore keeps keys in the kv_store table.
type SQLStore struct {
	db      *sql.DB
	driver  string
	upsert  string
	lockRow string
	w       watchers
}

// NewSQLStore wraps a connection pool opened with database.Open.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	s := &SQLStore{db: db, driver: driver}
	switch driver {
	case database.DriverMySQL:
		s.upsert = `INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = VALUES(updated_at)`
		s.lockRow = `SELECT v FROM kv_store WHERE k = ? FOR UPDATE`
	case database.DriverSQLite:
		s.upsert = `INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`
		// The single SQLite connection already serializes transactions.
		s.lockRow = `SELECT v FROM kv_store WHERE k = ?`
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

// Set overwrites the value stored under key.
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.upsert, key, value, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	s.w.notify(key, value)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE k = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.w.notify(key, nil)
	return nil
}

// Update runs fn inside a transaction holding the row.
func (s *SQLStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update %s: %w", key, err)
	}
	defer tx.Rollback()

	var current []byte
	found := true
	if err := tx.QueryRowContext(ctx, s.lockRow, key).Scan(&current); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("read %s: %w", key, err)
		}
		found = false
	}

	next, err := fn(current, found)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}

	if _, err := tx.ExecContext(ctx, s.upsert, key, next, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	s.w.notify(key, next)
	return nil
}

// Keys lists keys with the given prefix.
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	// '_' is a LIKE wildcard, so matches are re-checked with HasPrefix.
	rows, err := s.db.QueryContext(ctx, `SELECT k FROM kv_store WHERE k LIKE ? ORDER BY k`, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list %s*: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}

// Subscribe registers a write listener for key.
func (s *SQLStore) Subscribe(key string, fn func([]byte)) func() {
	return s.w.subscribe(key, fn)
}
