package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

type sessionKey struct{}

// WithSessionID tags a context with the page session that requested an analysis
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// SessionIDFrom returns the page session id carried by ctx, if any
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// PrioritizerService is the core service for message prioritization
type PrioritizerService struct {
	rules          RuleEngine
	delegated      BatchClassifier
	store          Store
	messages       *MessageLog
	prefs          PreferenceRepository
	notifiers      []Notifier
	logger         *zap.Logger
	identityLength int
}

// NewPrioritizerService creates a new prioritizer service.
// delegated may be nil, in which case ai requests fall back to the rules.
func NewPrioritizerService(
	rules RuleEngine,
	delegated BatchClassifier,
	store Store,
	prefs PreferenceRepository,
	notifiers []Notifier,
	logger *zap.Logger,
	identityLength int,
) *PrioritizerService {
	if identityLength <= 0 {
		identityLength = DefaultIdentityLength
	}
	return &PrioritizerService{
		rules:          rules,
		delegated:      delegated,
		store:          store,
		messages:       NewMessageLog(store),
		prefs:          prefs,
		notifiers:      notifiers,
		logger:         logger,
		identityLength: identityLength,
	}
}

// MessageLog returns the serialized updater for the stored messages
func (s *PrioritizerService) MessageLog() *MessageLog {
	return s.messages
}

// Mode returns the bucket mode of the rule engine
func (s *PrioritizerService) Mode() Mode {
	return s.rules.Mode()
}

// AnalyzeMessages classifies a batch, persists the result and notifies listeners.
// The only error returned is a cancelled context: the batch was superseded and
// nothing has been persisted.
func (s *PrioritizerService) AnalyzeMessages(ctx context.Context, messages []Message, method Method) (Categorization, error) {
	analyzed := make([]Message, len(messages))
	ptrs := make([]*Message, len(messages))
	for i := range messages {
		analyzed[i] = messages[i]
		analyzed[i].Priority = PriorityUnassigned
		analyzed[i].Keywords = nil
		analyzed[i].EnsureID(s.identityLength)
		ptrs[i] = &analyzed[i]
	}

	classifier := BatchClassifier(s.rules)
	if method == MethodAI {
		if s.delegated != nil {
			classifier = s.delegated
		} else {
			s.logger.Warn("Delegated classifier not configured, using rules",
				zap.String("action", "analyze_fallback"))
			method = MethodRule
		}
	}

	s.logger.Info("Analyzing messages",
		zap.Int("count", len(analyzed)),
		zap.String("method", string(method)),
		zap.String("session", SessionIDFrom(ctx)))

	categorized, err := classifier.Analyze(ctx, ptrs)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.persist(ctx, analyzed, categorized)

	event := &AnalysisEvent{
		SessionID:  SessionIDFrom(ctx),
		Method:     method,
		Categories: categorized,
		Messages:   analyzed,
		AnalyzedAt: time.Now(),
	}
	for _, n := range s.notifiers {
		if err := n.MessagesAnalyzed(ctx, event); err != nil {
			s.logger.Warn("Failed to notify analysis listener", zap.Error(err))
		}
	}

	return categorized, nil
}

// persist writes the categorization and messages, keeping responded flags set by automation
func (s *PrioritizerService) persist(ctx context.Context, analyzed []Message, categorized Categorization) {
	err := s.messages.Update(ctx, func(stored []Message) (map[string]any, error) {
		responded := make(map[string]bool, len(stored))
		for _, m := range stored {
			if m.Responded {
				responded[m.ID] = true
			}
		}
		for i := range analyzed {
			if responded[analyzed[i].ID] {
				analyzed[i].Responded = true
			}
		}
		return map[string]any{
			KeyCategorized: categorized,
			KeyMessages:    analyzed,
		}, nil
	})
	if err != nil {
		s.logger.Error("Failed to persist analysis", zap.Error(err))
		return
	}
	s.logger.Debug("Persisted analysis", zap.Int("messages", len(analyzed)), zap.Int("categorized", categorized.Count()))
}

// AddImportantContact adds a contact and persists the set if it changed
func (s *PrioritizerService) AddImportantContact(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if !s.rules.AddImportantContact(name) {
		return false
	}
	s.saveContacts(ctx)
	return true
}

// RemoveImportantContact removes a contact and persists the set if it changed
func (s *PrioritizerService) RemoveImportantContact(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if !s.rules.RemoveImportantContact(name) {
		return false
	}
	s.saveContacts(ctx)
	return true
}

func (s *PrioritizerService) saveContacts(ctx context.Context) {
	contacts := s.rules.ImportantContacts()
	if err := s.prefs.SaveContacts(ctx, contacts); err != nil {
		s.logger.Error("Failed to save important contacts", zap.Error(err))
		return
	}
	s.logger.Info("Saved important contacts", zap.Int("count", len(contacts)))
}

// LoadPreferences merges the persisted preferences into the rule engine
func (s *PrioritizerService) LoadPreferences(ctx context.Context) {
	prefs, err := s.prefs.Load(ctx)
	if err != nil {
		s.logger.Warn("Failed to load user preferences", zap.Error(err))
		return
	}
	s.rules.MergePreferences(prefs)
	s.logger.Info("Loaded user preferences",
		zap.Int("important_contacts", len(prefs.ImportantContacts)),
		zap.Int("priority_tags", len(prefs.PriorityTags)))
}

// SeedDefaults writes empty structures for any of the store keys that are absent
func (s *PrioritizerService) SeedDefaults(ctx context.Context) error {
	rec, err := s.store.Get(ctx, KeyMessages, KeyCategorized, KeyPreferences)
	if err != nil {
		return err
	}

	defaults := map[string]any{}
	if _, ok := rec[KeyMessages]; !ok {
		defaults[KeyMessages] = []Message{}
	}
	if _, ok := rec[KeyCategorized]; !ok {
		defaults[KeyCategorized] = NewCategorization(s.rules.Mode())
	}
	if _, ok := rec[KeyPreferences]; !ok {
		defaults[KeyPreferences] = Preferences{
			ImportantContacts: []string{},
			PriorityTags:      []string{},
			AutomationSettings: &AutomationSettings{
				Templates: map[Priority]string{PriorityHigh: "", PriorityMedium: "", PriorityLow: ""},
			},
		}
	}
	if len(defaults) == 0 {
		return nil
	}
	s.logger.Info("Seeding default storage values", zap.Int("keys", len(defaults)))
	return SetJSON(ctx, s.store, defaults)
}

// LoadCategorization returns the latest persisted categorization
func (s *PrioritizerService) LoadCategorization(ctx context.Context) (Categorization, error) {
	categorized := Categorization{}
	if _, err := GetJSON(ctx, s.store, KeyCategorized, &categorized); err != nil {
		return nil, err
	}
	return categorized, nil
}

// Messages returns the stored messages, optionally restricted to one bucket ("all" for every message)
func (s *PrioritizerService) Messages(ctx context.Context, bucket string) ([]Message, error) {
	var stored []Message
	if _, err := GetJSON(ctx, s.store, KeyMessages, &stored); err != nil {
		return nil, err
	}
	if bucket == "" || bucket == "all" {
		return stored, nil
	}

	categorized, err := s.LoadCategorization(ctx)
	if err != nil {
		return nil, err
	}
	members := make(map[string]bool)
	for _, id := range categorized[Priority(bucket)] {
		members[id] = true
	}
	var out []Message
	for _, m := range stored {
		if members[m.ID] {
			out = append(out, m)
		}
	}
	return out, nil
}
