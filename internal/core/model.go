package core

import (
	"strings"
	"time"
)

// Priority is the bucket a message is classified into
type Priority string

const (
	PriorityUnassigned Priority = "unassigned"
	PriorityLow        Priority = "low"
	PriorityMedium     Priority = "medium"
	PriorityHigh       Priority = "high"
	PriorityNotHigh    Priority = "not-high"
)

// Mode selects between the three-bucket scoring rule and the high/not-high rule
type Mode string

const (
	ModeMultiBucket Mode = "multi"
	ModeBinary      Mode = "binary"
)

// ParseMode returns the mode for a configuration value, defaulting to multi-bucket
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeBinary)) {
		return ModeBinary
	}
	return ModeMultiBucket
}

// Buckets returns the buckets a categorization holds in this mode, highest first
func (m Mode) Buckets() []Priority {
	if m == ModeBinary {
		return []Priority{PriorityHigh, PriorityNotHigh}
	}
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Method selects the classification path for a batch
type Method string

const (
	MethodRule Method = "rule"
	MethodAI   Method = "ai"
)

// ParseMethod returns the method for a request value, defaulting to rule-based
func ParseMethod(s string) Method {
	if strings.EqualFold(strings.TrimSpace(s), string(MethodAI)) {
		return MethodAI
	}
	return MethodRule
}

// Message represents one scraped conversation card
type Message struct {
	ID        string   `json:"id"`
	Sender    string   `json:"sender"`
	Preview   string   `json:"preview"`
	Timestamp string   `json:"timestamp"`
	Link      string   `json:"link"`
	Priority  Priority `json:"priority"`
	Responded bool     `json:"responded,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// EnsureID fills in the conversation identity if the scraper did not
func (m *Message) EnsureID(identityLength int) string {
	if m.ID == "" {
		m.ID = Identity(m.Sender, m.Preview, identityLength)
	}
	return m.ID
}

// Categorization maps each bucket to the identities classified into it
type Categorization map[Priority][]string

// NewCategorization returns an empty categorization with every bucket of the mode present
func NewCategorization(mode Mode) Categorization {
	c := make(Categorization, len(mode.Buckets()))
	for _, b := range mode.Buckets() {
		c[b] = []string{}
	}
	return c
}

// Add appends an identity to a bucket
func (c Categorization) Add(p Priority, id string) {
	c[p] = append(c[p], id)
}

// Lookup returns the bucket holding an identity, checking buckets from high to low
func (c Categorization) Lookup(id string) (Priority, bool) {
	for _, b := range []Priority{PriorityHigh, PriorityMedium, PriorityLow, PriorityNotHigh} {
		for _, candidate := range c[b] {
			if candidate == id {
				return b, true
			}
		}
	}
	return PriorityUnassigned, false
}

// Weights flattens the categorization into an identity -> sort weight table.
// Multi-bucket: high 3, medium 2, low 1. Binary: high 1. Anything else weighs 0.
func (c Categorization) Weights(mode Mode) map[string]int {
	weights := make(map[string]int)
	set := func(p Priority, w int) {
		for _, id := range c[p] {
			if w > weights[id] {
				weights[id] = w
			}
		}
	}
	if mode == ModeBinary {
		set(PriorityHigh, 1)
		return weights
	}
	set(PriorityLow, 1)
	set(PriorityMedium, 2)
	set(PriorityHigh, 3)
	return weights
}

// Count returns the number of identities across all buckets
func (c Categorization) Count() int {
	n := 0
	for _, ids := range c {
		n += len(ids)
	}
	return n
}

// AutomationSettings holds the per-bucket reply templates
type AutomationSettings struct {
	Enabled   bool                `json:"enabled"`
	Templates map[Priority]string `json:"templates"`
}

// Preferences is the user-configurable classifier input persisted under userPreferences.
// A nil ImportantContacts means the field was absent.
type Preferences struct {
	ImportantContacts  []string              `json:"importantContacts"`
	CustomKeywords     map[Priority][]string `json:"customKeywords,omitempty"`
	PriorityTags       []string              `json:"priorityTags"`
	AutomationSettings *AutomationSettings   `json:"automationSettings,omitempty"`
}

// AnalysisEvent is published after a batch has been classified and persisted
type AnalysisEvent struct {
	SessionID  string         `json:"sessionId,omitempty"`
	Method     Method         `json:"method"`
	Categories Categorization `json:"categories"`
	Messages   []Message      `json:"-"`
	AnalyzedAt time.Time      `json:"analyzedAt"`
}

// HighPriority returns the analyzed messages that landed in the high bucket
func (e *AnalysisEvent) HighPriority() []Message {
	var out []Message
	for _, m := range e.Messages {
		if m.Priority == PriorityHigh {
			out = append(out, m)
		}
	}
	return out
}

// PriorityRequest is sent to the delegated classification service
type PriorityRequest struct {
	HighPriorityKeywords []string `json:"highPriorityKeywords"`
	PreviewText          string   `json:"previewText"`
}

// PriorityResponse is the structured answer of the delegated classification service
type PriorityResponse struct {
	IsHighPriority bool     `json:"isHighPriority"`
	Keywords       []string `json:"keywords"`
}

// SendResult is the outcome of an automated reply
type SendResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}
