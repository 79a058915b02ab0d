package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

// DatabaseFileName is the SQLite database inside the config directory.
const DatabaseFileName = "focusflow.db"

// SQLiteStore keeps one row per key; values are YAML documents.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (store *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS prefs (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := store.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create prefs table: %w", err)
	}
	return nil
}

// Load reads the value under key.
func (store *SQLiteStore) Load(key string, dst any) (bool, error) {
	var raw string
	err := store.db.QueryRowContext(context.Background(), `SELECT value FROM prefs WHERE key = ?;`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load pref %s: %w", key, err)
	}
	if err := yaml.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("parse pref %s: %w", key, err)
	}
	return true, nil
}

// Save upserts the value under key.
func (store *SQLiteStore) Save(key string, value any) error {
	serialized, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal pref %s: %w", key, err)
	}
	const stmt = `
INSERT INTO prefs (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
`
	updatedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := store.db.ExecContext(context.Background(), stmt, key, string(serialized), updatedAt); err != nil {
		return fmt.Errorf("save pref %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (store *SQLiteStore) Close() error {
	return store.db.Close()
}
