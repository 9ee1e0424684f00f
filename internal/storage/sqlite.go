package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore backs both the key-value document store and the image blob
// store with a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ KVStore   = (*SQLiteStore)(nil)
	_ BlobStore = (*SQLiteStore)(nil)
)

// DefaultDBPath returns the default TaskPoints database location.
func DefaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".taskpoints.db"), nil
}

// OpenSQLite opens (and creates if missing) the database at path and
// applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS blobs (
			id TEXT PRIMARY KEY,
			mime TEXT NOT NULL DEFAULT '',
			data BLOB NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	if s == nil || s.db == nil {
		return "", false, ErrStoreClosed
	}
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) PutBlob(ctx context.Context, blob Blob) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if blob.ID == "" {
		return fmt.Errorf("put blob: id is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blobs (id, mime, data) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET mime = excluded.mime, data = excluded.data`,
		blob.ID, blob.MIME, blob.Data)
	if err != nil {
		return fmt.Errorf("put blob %q: %w", blob.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetBlob(ctx context.Context, id string) (Blob, error) {
	if s == nil || s.db == nil {
		return Blob{}, ErrStoreClosed
	}
	blob := Blob{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT mime, data FROM blobs WHERE id = ?`, id).Scan(&blob.MIME, &blob.Data)
	if err == sql.ErrNoRows {
		return Blob{}, ErrNotFound
	}
	if err != nil {
		return Blob{}, fmt.Errorf("get blob %q: %w", id, err)
	}
	return blob, nil
}

func (s *SQLiteStore) DeleteBlob(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete blob %q: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
