package stamp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const busyTimeoutMillis = 5000

// SQLiteStore keeps all stamps in a single SQLite database, keyed by the
// same derived stamp key the file store uses. Useful when the cache
// directory lives on a synced filesystem where many small files are
// awkward.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time interface checks.
var (
	_ Store  = (*SQLiteStore)(nil)
	_ Lister = (*SQLiteStore)(nil)
)

// OpenSQLiteStore opens (creating if needed) the stamp database at path.
// The caller closes the store when done.
//
// The database uses WAL mode, a 5 s busy timeout, and a single connection
// (SQLite serialises writes anyway).
func OpenSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("stamp: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("stamp: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.TODO()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stamp: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeoutMillis)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stamp: set busy_timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stamps (
			key        TEXT    PRIMARY KEY,
			epoch      INTEGER NOT NULL,
			updated_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("stamp: migrate: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Read returns the stored epoch for key, or 0 when absent or on any
// query failure.
func (s *SQLiteStore) Read(key string) int64 {
	var epoch int64
	err := s.db.QueryRowContext(context.TODO(),
		"SELECT epoch FROM stamps WHERE key = ?", key).Scan(&epoch)
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		s.logger.Warn("stamp: read failed", "key", key, "error", err)
		return 0
	}
	return epoch
}

// Write records epoch for key, replacing any previous value. Failures are
// logged and swallowed.
func (s *SQLiteStore) Write(key string, epoch int64) {
	_, err := s.db.ExecContext(context.TODO(), `
		INSERT INTO stamps (key, epoch) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			epoch      = excluded.epoch,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')`,
		key, epoch,
	)
	if err != nil {
		s.logger.Warn("stamp: write failed", "key", key, "error", err)
	}
}

// List enumerates all stored stamps.
func (s *SQLiteStore) List() ([]Entry, error) {
	rows, err := s.db.QueryContext(context.TODO(),
		"SELECT key, epoch FROM stamps ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("stamp: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Epoch); err != nil {
			return nil, fmt.Errorf("stamp: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stamp: list rows: %w", err)
	}
	return entries, nil
}

// Delete removes the stamp for key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.ExecContext(context.TODO(),
		"DELETE FROM stamps WHERE key = ?", key); err != nil {
		return fmt.Errorf("stamp: delete %s: %w", key, err)
	}
	return nil
}
