package classifier

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/mikey/linkedin-prioritizer/internal/contacts"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// Score thresholds for the multi-bucket rule
const (
	highThreshold   = 4
	mediumThreshold = 2
)

// Options configures a new Classifier
type Options struct {
	Mode              core.Mode
	IdentityLength    int
	ImportantContacts []string
	RecencyHints      []string
}

// Score is the per-signal breakdown of a multi-bucket classification
type Score struct {
	Sender  int `json:"sender" yaml:"sender"`
	Content int `json:"content" yaml:"content"`
	Recency int `json:"recency" yaml:"recency"`
	Total   int `json:"total" yaml:"total"`
}

// Classifier is the rule-based message prioritizer
type Classifier struct {
	mu             sync.RWMutex
	mode           core.Mode
	identityLength int
	contacts       *contacts.Matcher
	defaults       map[core.Priority][]*regexp.Regexp
	patterns       map[core.Priority][]*regexp.Regexp
	recencyHints   []string
	logger         *zap.Logger
}

// New creates a new rule-based classifier
func New(opts Options, logger *zap.Logger) *Classifier {
	if opts.Mode == "" {
		opts.Mode = core.ModeMultiBucket
	}
	if opts.IdentityLength <= 0 {
		opts.IdentityLength = core.DefaultIdentityLength
	}
	if opts.RecencyHints == nil {
		opts.RecencyHints = DefaultRecencyHints
	}

	defaults := compileDefaults()
	c := &Classifier{
		mode:           opts.Mode,
		identityLength: opts.IdentityLength,
		contacts:       contacts.NewMatcher(opts.ImportantContacts, logger),
		defaults:       defaults,
		patterns:       clonePatterns(defaults),
		logger:         logger,
	}
	c.SetRecencyHints(opts.RecencyHints)
	return c
}

// Mode returns the bucket mode
func (c *Classifier) Mode() core.Mode {
	return c.mode
}

// Classify maps a message to its priority bucket. It is deterministic for a
// given configuration and never fails: missing text contributes nothing.
func (c *Classifier) Classify(m *core.Message) core.Priority {
	if m == nil {
		return c.lowest()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.mode == core.ModeBinary {
		if c.isHighBinary(m) {
			return core.PriorityHigh
		}
		return core.PriorityNotHigh
	}

	score := c.scoreLocked(m)
	switch {
	case score.Total >= highThreshold:
		return core.PriorityHigh
	case score.Total >= mediumThreshold:
		return core.PriorityMedium
	default:
		return core.PriorityLow
	}
}

// Explain returns the multi-bucket score breakdown for a message
func (c *Classifier) Explain(m *core.Message) Score {
	if m == nil {
		return Score{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scoreLocked(m)
}

func (c *Classifier) lowest() core.Priority {
	if c.mode == core.ModeBinary {
		return core.PriorityNotHigh
	}
	return core.PriorityLow
}

func (c *Classifier) scoreLocked(m *core.Message) Score {
	s := Score{
		Sender:  c.senderScore(m.Sender),
		Content: c.contentScore(m.Preview),
		Recency: c.recencyScore(m.Timestamp),
	}
	s.Total = s.Sender + s.Content + s.Recency
	return s
}

// isHighBinary short-circuits on the first signal that makes a message high
func (c *Classifier) isHighBinary(m *core.Message) bool {
	if c.contacts.IsImportant(m.Sender) {
		return true
	}
	if m.Sender != "" && managerialSender.MatchString(m.Sender) {
		return true
	}
	if m.Preview != "" {
		for _, p := range c.patterns[core.PriorityHigh] {
			if p.MatchString(m.Preview) {
				return true
			}
		}
	}
	return c.recencyScore(m.Timestamp) > 0
}

func (c *Classifier) senderScore(sender string) int {
	if sender == "" {
		return 0
	}
	if c.contacts.IsImportant(sender) {
		return 3
	}
	if managerialSender.MatchString(sender) {
		return 2
	}
	return 0
}

func (c *Classifier) contentScore(content string) int {
	if content == "" {
		return 0
	}
	for _, bucket := range contentBuckets {
		for _, p := range c.patterns[bucket] {
			if !p.MatchString(content) {
				continue
			}
			switch bucket {
			case core.PriorityHigh:
				return 2
			case core.PriorityMedium:
				return 1
			default:
				return 0
			}
		}
	}
	return 0
}

func (c *Classifier) recencyScore(timestamp string) int {
	if timestamp == "" {
		return 0
	}
	lower := strings.ToLower(timestamp)
	for _, hint := range c.recencyHints {
		if strings.Contains(lower, hint) {
			return 1
		}
	}
	return 0
}

// ClassifyAll assigns each message's priority in place and groups identities by bucket
func (c *Classifier) ClassifyAll(messages []*core.Message) core.Categorization {
	categorized := core.NewCategorization(c.mode)
	for _, m := range messages {
		if m == nil {
			continue
		}
		p := c.Classify(m)
		m.Priority = p

		id := m.ID
		if id == "" {
			id = core.Identity(m.Sender, m.Preview, c.identityLength)
		}
		categorized.Add(p, id)
	}

	if c.logger != nil {
		c.logger.Debug("Classified messages",
			zap.Int("count", len(messages)),
			zap.Int("high", len(categorized[core.PriorityHigh])))
	}
	return categorized
}

// Analyze implements core.BatchClassifier
func (c *Classifier) Analyze(_ context.Context, messages []*core.Message) (core.Categorization, error) {
	return c.ClassifyAll(messages), nil
}

// AddImportantContact adds a contact and reports whether the set changed
func (c *Classifier) AddImportantContact(name string) bool {
	return c.contacts.Add(name)
}

// RemoveImportantContact removes a contact and reports whether the set changed
func (c *Classifier) RemoveImportantContact(name string) bool {
	return c.contacts.Remove(name)
}

// ImportantContacts returns the current contact list
func (c *Classifier) ImportantContacts() []string {
	return c.contacts.List()
}

// MergePreferences applies persisted preferences. The contact list is replaced
// outright when present; custom keywords and priority tags extend the built-in
// patterns, which are never replaced. Merging the same preferences twice yields
// the same configuration.
func (c *Classifier) MergePreferences(prefs core.Preferences) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prefs.ImportantContacts != nil {
		c.contacts.Replace(prefs.ImportantContacts)
	}

	patterns := clonePatterns(c.defaults)
	added := 0
	for _, bucket := range contentBuckets {
		for _, kw := range prefs.CustomKeywords[bucket] {
			if p := literalPattern(kw); p != nil {
				patterns[bucket] = append(patterns[bucket], p)
				added++
			}
		}
	}
	for _, tag := range prefs.PriorityTags {
		if p := literalPattern(tag); p != nil {
			patterns[core.PriorityHigh] = append(patterns[core.PriorityHigh], p)
			added++
		}
	}
	c.patterns = patterns

	if c.logger != nil {
		c.logger.Debug("Merged user preferences",
			zap.Bool("contacts_replaced", prefs.ImportantContacts != nil),
			zap.Int("custom_patterns", added))
	}
}

// SetRecencyHints replaces the recency fragments
func (c *Classifier) SetRecencyHints(hints []string) {
	lowered := make([]string, 0, len(hints))
	for _, h := range hints {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			lowered = append(lowered, h)
		}
	}

	c.mu.Lock()
	c.recencyHints = lowered
	c.mu.Unlock()
}

func clonePatterns(in map[core.Priority][]*regexp.Regexp) map[core.Priority][]*regexp.Regexp {
	out := make(map[core.Priority][]*regexp.Regexp, len(in))
	for bucket, ps := range in {
		out[bucket] = append([]*regexp.Regexp(nil), ps...)
	}
	return out
}
