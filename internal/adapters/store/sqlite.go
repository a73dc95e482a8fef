package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of core.Store
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (or creates) a SQLite store at dbPath
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key TEXT PRIMARY KEY,
			store_value BLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteStore{sqlStore{
		db:     db,
		logger: logger,
		driver: "sqlite",
		upsert: `
			INSERT INTO kv_store (store_key, store_value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(store_key) DO UPDATE SET
				store_value = excluded.store_value,
				updated_at = excluded.updated_at`,
	}}, nil
}

// Get returns the requested keys that exist
func (s *SQLiteStore) Get(ctx context.Context, keys ...string) (core.Record, error) {
	return s.get(ctx, keys...)
}

// Set writes the given keys in one transaction
func (s *SQLiteStore) Set(ctx context.Context, rec core.Record) error {
	return s.set(ctx, rec)
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	s.stop()
}
