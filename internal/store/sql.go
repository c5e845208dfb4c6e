package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	Schema string
	Upsert string
}

var (
	MySQL = Dialect{
		Name: "mysql",
		Schema: `
			CREATE TABLE IF NOT EXISTS medcall_state (
				k VARCHAR(191) NOT NULL PRIMARY KEY,
				v LONGTEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		Upsert: `
			INSERT INTO medcall_state (k, v, updated_at)
			VALUES (?, ?, NOW())
			ON DUPLICATE KEY UPDATE v = VALUES(v), updated_at = NOW()`,
	}

	SQLite = Dialect{
		Name: "sqlite3",
		Schema: `
			CREATE TABLE IF NOT EXISTS medcall_state (
				k TEXT NOT NULL PRIMARY KEY,
				v TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		Upsert: `
			INSERT INTO medcall_state (k, v, updated_at)
			VALUES (?, ?, datetime('now'))
			ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at = excluded.updated_at`,
	}
)

// SQLStore keeps the state in a single key/value table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore creates the state table when missing. The store takes
// ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, dialect.Schema); err != nil {
		return nil, fmt.Errorf("store: init %s schema: %w", dialect.Name, err)
	}
	return &SQLStore{db: db, dialect: dialect}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT v FROM medcall_state WHERE k = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Upsert, key, string(value))
	return err
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
