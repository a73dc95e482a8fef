package core

import (
	"context"
	"sync"
)

// MessageLog serializes every read-merge-write of the stored messages so that
// analysis and automation never overwrite each other's fields
type MessageLog struct {
	mu    sync.Mutex
	store Store
}

// NewMessageLog creates a MessageLog over the given store
func NewMessageLog(store Store) *MessageLog {
	return &MessageLog{store: store}
}

// Update reads the stored messages, hands them to fn and writes the values fn
// returns in one Set call. A nil result writes nothing.
func (l *MessageLog) Update(ctx context.Context, fn func(stored []Message) (map[string]any, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var stored []Message
	if _, err := GetJSON(ctx, l.store, KeyMessages, &stored); err != nil {
		return err
	}
	values, err := fn(stored)
	if err != nil || len(values) == 0 {
		return err
	}
	return SetJSON(ctx, l.store, values)
}

// MarkResponded sets the responded flag on the stored messages with the given ids
func (l *MessageLog) MarkResponded(ctx context.Context, ids map[string]bool) error {
	return l.Update(ctx, func(stored []Message) (map[string]any, error) {
		for i := range stored {
			if ids[stored[i].ID] {
				stored[i].Responded = true
			}
		}
		return map[string]any{KeyMessages: stored}, nil
	})
}
