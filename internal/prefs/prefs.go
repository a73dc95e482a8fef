package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// Field names inside the userPreferences object
const (
	FieldImportantContacts  = "importantContacts"
	FieldCustomKeywords     = "customKeywords"
	FieldPriorityTags       = "priorityTags"
	FieldAutomationSettings = "automationSettings"
)

// Store persists user preferences under a single store key. Every write reads
// the current object, replaces only the fields it owns and writes it back, so
// sibling fields written by other flows survive.
type Store struct {
	mu     sync.Mutex
	store  core.Store
	logger *zap.Logger
}

// NewStore creates a new preference store
func NewStore(store core.Store, logger *zap.Logger) *Store {
	return &Store{
		store:  store,
		logger: logger,
	}
}

// Load returns the persisted preferences. Missing preferences load as the zero value.
func (s *Store) Load(ctx context.Context) (core.Preferences, error) {
	var prefs core.Preferences
	if _, err := core.GetJSON(ctx, s.store, core.KeyPreferences, &prefs); err != nil {
		return core.Preferences{}, err
	}
	return prefs, nil
}

// SaveContacts replaces the important contact list
func (s *Store) SaveContacts(ctx context.Context, contacts []string) error {
	if contacts == nil {
		contacts = []string{}
	}
	return s.Update(ctx, map[string]any{FieldImportantContacts: contacts})
}

// SaveAutomation replaces the automation settings
func (s *Store) SaveAutomation(ctx context.Context, settings core.AutomationSettings) error {
	return s.Update(ctx, map[string]any{FieldAutomationSettings: settings})
}

// SaveCustomKeywords replaces the custom keywords of one bucket
func (s *Store) SaveCustomKeywords(ctx context.Context, bucket core.Priority, keywords []string) error {
	return s.modify(ctx, func(fields map[string]json.RawMessage) error {
		custom := map[core.Priority][]string{}
		if raw, ok := fields[FieldCustomKeywords]; ok {
			if err := json.Unmarshal(raw, &custom); err != nil {
				return fmt.Errorf("failed to decode %s: %w", FieldCustomKeywords, err)
			}
		}
		if len(keywords) == 0 {
			delete(custom, bucket)
		} else {
			custom[bucket] = keywords
		}
		return setField(fields, FieldCustomKeywords, custom)
	})
}

// AddPriorityTag appends a tag and reports whether it was new
func (s *Store) AddPriorityTag(ctx context.Context, tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false, nil
	}
	return s.editTags(ctx, func(tags []string) ([]string, bool) {
		if slices.Contains(tags, tag) {
			return tags, false
		}
		return append(tags, tag), true
	})
}

// RemovePriorityTag removes a tag and reports whether it was present
func (s *Store) RemovePriorityTag(ctx context.Context, tag string) (bool, error) {
	tag = strings.TrimSpace(tag)
	return s.editTags(ctx, func(tags []string) ([]string, bool) {
		i := slices.Index(tags, tag)
		if i < 0 {
			return tags, false
		}
		return slices.Delete(tags, i, i+1), true
	})
}

func (s *Store) editTags(ctx context.Context, edit func([]string) ([]string, bool)) (bool, error) {
	changed := false
	err := s.modify(ctx, func(fields map[string]json.RawMessage) error {
		tags := []string{}
		if raw, ok := fields[FieldPriorityTags]; ok {
			if err := json.Unmarshal(raw, &tags); err != nil {
				return fmt.Errorf("failed to decode %s: %w", FieldPriorityTags, err)
			}
		}
		tags, changed = edit(tags)
		if !changed {
			return errUnchanged
		}
		return setField(fields, FieldPriorityTags, tags)
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	return changed, err
}

// Update replaces the given top-level fields of the preferences object and
// keeps every other field, including ones this package does not know about.
func (s *Store) Update(ctx context.Context, values map[string]any) error {
	return s.modify(ctx, func(fields map[string]json.RawMessage) error {
		for name, v := range values {
			if err := setField(fields, name, v); err != nil {
				return err
			}
		}
		return nil
	})
}

var errUnchanged = errors.New("preferences unchanged")

func (s *Store) modify(ctx context.Context, fn func(map[string]json.RawMessage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fields := map[string]json.RawMessage{}
	if _, err := core.GetJSON(ctx, s.store, core.KeyPreferences, &fields); err != nil {
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	if err := fn(fields); err != nil {
		return err
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := s.store.Set(ctx, core.Record{core.KeyPreferences: raw}); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	s.logger.Debug("Updated user preferences", zap.Int("fields", len(fields)))
	return nil
}

func setField(fields map[string]json.RawMessage, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	fields[name] = raw
	return nil
}
