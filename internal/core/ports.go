package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store keys shared with the extension
const (
	KeyMessages    = "linkedInMessages"
	KeyCategorized = "categorizedMessages"
	KeyPreferences = "userPreferences"
)

// Record is a partial view of the key-value store
type Record map[string]json.RawMessage

// Store defines the interface for the persistent key-value store
type Store interface {
	// Get returns the subset of the requested keys that exist
	Get(ctx context.Context, keys ...string) (Record, error)

	// Set writes the given keys, merging at the top level only
	Set(ctx context.Context, rec Record) error
}

// PriorityClient defines the interface for the delegated classification service
type PriorityClient interface {
	// CheckPriority asks the external service whether a preview is high priority
	CheckPriority(ctx context.Context, req PriorityRequest) (*PriorityResponse, error)
}

// BatchClassifier classifies a batch of messages in place and groups them by bucket
type BatchClassifier interface {
	Analyze(ctx context.Context, messages []*Message) (Categorization, error)
}

// RuleEngine is the local classifier, which also owns the important contact set
type RuleEngine interface {
	BatchClassifier
	AddImportantContact(name string) bool
	RemoveImportantContact(name string) bool
	ImportantContacts() []string
	MergePreferences(prefs Preferences)
	Mode() Mode
}

// PreferenceRepository persists user preferences with read-merge-write semantics
type PreferenceRepository interface {
	Load(ctx context.Context) (Preferences, error)
	SaveContacts(ctx context.Context, contacts []string) error
}

// Notifier receives analysis results after they have been persisted
type Notifier interface {
	MessagesAnalyzed(ctx context.Context, event *AnalysisEvent) error
}

// GetJSON decodes one key of the store into v and reports whether it was present
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	rec, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	raw, ok := rec[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes the given values and writes them in one Set call
func SetJSON(ctx context.Context, s Store, values map[string]any) error {
	rec := make(Record, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		rec[key] = raw
	}
	return s.Set(ctx, rec)
}
