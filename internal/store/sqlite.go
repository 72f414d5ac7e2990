// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Keeps one JSON blob per key in a kv table with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store and AuditStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	prefix string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed. An empty prefix uses DefaultPrefix.
func NewSQLiteStore(path, prefix string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if prefix == "" {
		prefix = DefaultPrefix
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		prefix: prefix,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "prefix", prefix)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS audit_log (
			audit_id    TEXT PRIMARY KEY,
			actor_id    TEXT NOT NULL,
			action      TEXT NOT NULL,
			target_type TEXT NOT NULL,
			target_id   TEXT NOT NULL,
			ts          TEXT NOT NULL,
			detail_json TEXT,

			CHECK (action IN (
				'add_location',
				'edit_location',
				'delete_location',
				'add_review',
				'delete_review',
				'block_user',
				'unblock_user',
				'set_role'
			))
		);

		CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_log(actor_id);
		CREATE INDEX IF NOT EXISTS idx_audit_target ON audit_log(target_type, target_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// Save serializes value to JSON and upserts it under the prefixed key.
func (s *SQLiteStore) Save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return storeErr("encoding", key, err)
	}

	query := `
		INSERT OR REPLACE INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		s.prefix+key,
		string(data),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return storeErr("writing", key, err)
	}

	s.logger.Debug("saved key", "key", key, "size", len(data))
	return nil
}

// Load reads the prefixed key and decodes it into out.
func (s *SQLiteStore) Load(ctx context.Context, key string, out any) (bool, error) {
	query := `SELECT value FROM kv WHERE key = ?`

	var raw string
	err := s.db.QueryRowContext(ctx, query, s.prefix+key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, storeErr("reading", key, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, storeErr("decoding", key, err)
	}
	return true, nil
}

// Delete removes the prefixed key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, s.prefix+key); err != nil {
		return storeErr("deleting", key, err)
	}
	s.logger.Debug("deleted key", "key", key)
	return nil
}

// saveRaw stores text verbatim. Tests use it to plant malformed values.
func (s *SQLiteStore) saveRaw(ctx context.Context, key, raw string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		s.prefix+key, raw, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Ensure SQLiteStore implements Store and AuditStore.
var (
	_ Store      = (*SQLiteStore)(nil)
	_ AuditStore = (*SQLiteStore)(nil)
)
