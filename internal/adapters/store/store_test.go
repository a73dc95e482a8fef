package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// backend is what every store implementation provides
type backend interface {
	core.Store
	Stop()
}

func backends(t *testing.T) map[string]backend {
	logger := zaptest.NewLogger(t)

	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"), logger)
	require.NoError(t, err)

	return map[string]backend{
		"memory": NewMemoryStore(logger),
		"sqlite": sqlite,
	}
}

func TestStore_PartialGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, core.Record{
				core.KeyMessages: json.RawMessage(`[]`),
			}))

			rec, err := s.Get(ctx, core.KeyMessages, core.KeyPreferences)
			require.NoError(t, err)
			assert.Len(t, rec, 1)
			assert.JSONEq(t, `[]`, string(rec[core.KeyMessages]))
			assert.NotContains(t, rec, core.KeyPreferences)

			empty, err := s.Get(ctx)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStore_TopLevelMerge(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			ctx := context.Background()

			require.NoError(t, s.Set(ctx, core.Record{
				core.KeyMessages:    json.RawMessage(`[{"id":"a"}]`),
				core.KeyPreferences: json.RawMessage(`{"importantContacts":["Jane"],"priorityTags":["go"]}`),
			}))
			// Set replaces a key whole and leaves the others alone
			require.NoError(t, s.Set(ctx, core.Record{
				core.KeyPreferences: json.RawMessage(`{"importantContacts":[]}`),
			}))

			rec, err := s.Get(ctx, core.KeyMessages, core.KeyPreferences)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"a"}]`, string(rec[core.KeyMessages]))
			assert.JSONEq(t, `{"importantContacts":[]}`, string(rec[core.KeyPreferences]))
		})
	}
}

func TestStore_JSONHelpers(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			ctx := context.Background()

			var got core.Categorization
			found, err := core.GetJSON(ctx, s, core.KeyCategorized, &got)
			require.NoError(t, err)
			assert.False(t, found)

			want := core.Categorization{core.PriorityHigh: {"Jane-hi"}, core.PriorityNotHigh: {}}
			require.NoError(t, core.SetJSON(ctx, s, map[string]any{core.KeyCategorized: want}))

			found, err = core.GetJSON(ctx, s, core.KeyCategorized, &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, want, got)
		})
	}
}

func TestMemoryStore_Isolation(t *testing.T) {
	s := NewMemoryStore(zaptest.NewLogger(t))
	ctx := context.Background()

	raw := json.RawMessage(`{"a":1}`)
	require.NoError(t, s.Set(ctx, core.Record{"k": raw}))
	raw[2] = 'b'

	rec, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(rec["k"]))

	s.Stop()
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(ctx, core.Record{"k": raw}), ErrClosed)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Stop()
			assert.Error(t, s.Set(ctx, core.Record{"k": json.RawMessage(`1`)}))
		})
	}
}
