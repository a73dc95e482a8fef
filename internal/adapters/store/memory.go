package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a store that has been stopped
var ErrClosed = errors.New("store closed")

// MemoryStore is an in-memory implementation of core.Store
type MemoryStore struct {
	entries map[string]json.RawMessage
	mu      sync.RWMutex
	closed  bool
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]json.RawMessage),
		logger:  logger,
	}
}

// Get returns the requested keys that exist
func (s *MemoryStore) Get(ctx context.Context, keys ...string) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rec := make(core.Record, len(keys))
	for _, key := range keys {
		if raw, ok := s.entries[key]; ok {
			rec[key] = append(json.RawMessage(nil), raw...)
		}
	}
	return rec, nil
}

// Set writes the given keys, replacing each value whole
func (s *MemoryStore) Set(ctx context.Context, rec core.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	for key, raw := range rec {
		s.entries[key] = append(json.RawMessage(nil), raw...)
	}
	s.logger.Debug("Stored keys", zap.Int("count", len(rec)))
	return nil
}

// Stop releases the store
func (s *MemoryStore) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.entries = nil
}
