package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of core.Store
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to MySQL and ensures the key-value table exists
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key VARCHAR(191) PRIMARY KEY,
			store_value LONGBLOB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{sqlStore{
		db:     db,
		logger: logger,
		driver: "mysql",
		upsert: `
			INSERT INTO kv_store (store_key, store_value)
			VALUES (?, ?)
			ON DUPLICATE KEY UPDATE store_value = VALUES(store_value)`,
	}}, nil
}

// Get returns the requested keys that exist
func (s *MySQLStore) Get(ctx context.Context, keys ...string) (core.Record, error) {
	return s.get(ctx, keys...)
}

// Set writes the given keys in one transaction
func (s *MySQLStore) Set(ctx context.Context, rec core.Record) error {
	return s.set(ctx, rec)
}

// Stop closes the database connection
func (s *MySQLStore) Stop() {
	s.stop()
}
