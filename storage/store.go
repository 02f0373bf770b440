// Package storage implements SQLite persistence for medications, user
// regimen entries, drug interactions and application settings.
package storage

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB owns the SQLite connection shared by the entity stores.
type DB struct {
	conn *sql.DB
}

// Open opens (creating if needed) the database at dbPath and initializes
// the schema.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// encodeList JSON-encodes a list field for storage. Nil encodes as "[]"
// so rows never hold NULL list columns.
func encodeList(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list field: %w", err)
	}
	if string(raw) == "null" {
		return "[]", nil
	}
	return string(raw), nil
}

// decodeList decodes a JSON list column into out.
func decodeList(raw string, out any) error {
	if raw == "" {
		raw = "[]"
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode list field: %w", err)
	}
	return nil
}
