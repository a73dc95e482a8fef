package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// sqlStore holds the key-value logic shared by the SQL backends
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
	upsert string
	driver string
}

func (s *sqlStore) get(ctx context.Context, keys ...string) (core.Record, error) {
	rec := make(core.Record, len(keys))
	if len(keys) == 0 {
		return rec, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT store_key, store_value FROM kv_store WHERE store_key IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s store: %w", s.driver, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s store row: %w", s.driver, err)
		}
		rec[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s store rows: %w", s.driver, err)
	}
	return rec, nil
}

// set writes every key in one transaction so a partial record is never visible
func (s *sqlStore) set(ctx context.Context, rec core.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", s.driver, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.upsert)
	if err != nil {
		return fmt.Errorf("failed to prepare %s upsert: %w", s.driver, err)
	}
	defer stmt.Close()

	for key, raw := range rec {
		if _, err := stmt.ExecContext(ctx, key, []byte(raw)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s transaction: %w", s.driver, err)
	}
	s.logger.Debug("Stored keys", zap.String("driver", s.driver), zap.Int("count", len(rec)))
	return nil
}

func (s *sqlStore) stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.String("driver", s.driver), zap.Error(err))
	}
}
