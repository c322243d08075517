package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a local SQLite-backed Store holding one row per storage key.
type SQLite struct {
	db  *sql.DB
	key string
}

// OpenSQLite opens (or creates) the database at path and prepares the
// form-state table. The store reads and writes the fixed FormValuesKey row.
func OpenSQLite(path string) (*SQLite, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" || p == "." {
		return nil, errors.New("store: missing db path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, fmt.Errorf("store: prepare directory: %w", err)
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLite{db: db, key: FormValuesKey}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS form_state (
	key TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at_unix_ms INTEGER NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the persisted mapping. Missing rows and undecodable payloads
// degrade to an empty mapping rather than failing the caller.
func (s *SQLite) Load(ctx context.Context) (map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM form_state WHERE key = ?`, s.key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return map[string]any{}, nil
		}
		return map[string]any{}, fmt.Errorf("store: load: %w", err)
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return map[string]any{}, nil
	}
	if values == nil {
		values = map[string]any{}
	}
	return values, nil
}

// Save upserts the mapping under the storage key.
func (s *SQLite) Save(ctx context.Context, values map[string]any) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("store: encode values: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO form_state (key, payload, updated_at_unix_ms) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at_unix_ms = excluded.updated_at_unix_ms`,
		s.key, string(payload), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: save: %w", err)
	}
	return nil
}
