package cache

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/aquatrack/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS loads (
	id      TEXT PRIMARY KEY,
	origin  TEXT NOT NULL,
	locator TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	error   TEXT NOT NULL DEFAULT '',
	at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_loads_at ON loads(at);
`

// SQLite is a Backend and History stored in one SQLite file.
type SQLite struct {
	conn *sql.DB
}

var _ Backend = (*SQLite)(nil)

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cache: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying connection.
func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) Get(key string) (string, error) {
	var v string
	err := db.conn.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", apperr.ErrStorage, key, err)
	}
	return v, nil
}

func (db *SQLite) Set(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", apperr.ErrStorage, key, err)
	}
	return nil
}

func (db *SQLite) Remove(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: remove %s: %v", apperr.ErrStorage, key, err)
	}
	return nil
}
