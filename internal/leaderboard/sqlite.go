package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const DefaultTable = "leaderboard"

// SQLite keeps lists in a key/value table of an sqlite database.
type SQLite struct {
	mu    sync.Mutex
	table string
	db    *sql.DB
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect sqlite db: %w", err)
	}
	s, err := NewSQLite(db, DefaultTable)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite creates table in db if it does not exist. The table name may only
// contain letters, digits, '_' and '-'.
func NewSQLite(db *sql.DB, table string) (*SQLite, error) {
	if !validKey(table) {
		return nil, fmt.Errorf("%w: %q", ErrBadName, table)
	}

	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS "` + table + `" (
	key		TEXT PRIMARY KEY,
	value	BLOB
);`)
	if err != nil {
		return nil, err
	}
	return &SQLite{table: table, db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM "`+s.table+`" WHERE key = ?;`, key,
	).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

// Inserts a new key-value pair or updates an existing one.
func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO "`+s.table+`" (key, value)
VALUES(?, ?)
ON CONFLICT(key)
DO UPDATE SET value=excluded.value;`,
		key, value)
	return err
}

// Deletes key from store without checking if it existed.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM "`+s.table+`" WHERE key = ?;`, key)
	return err
}

// Keys lists every stored key.
func (s *SQLite) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM "`+s.table+`";`)
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

func (s *SQLite) Close() error {
	return s.db.Close()
}
