package contacts

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Matcher holds the important contact set and matches senders against it
type Matcher struct {
	mu       sync.RWMutex
	contacts []string
	folded   []string
	fold     cases.Caser
	logger   *zap.Logger
}

// NewMatcher creates a new matcher seeded with the given contacts
func NewMatcher(contacts []string, logger *zap.Logger) *Matcher {
	m := &Matcher{
		fold:   cases.Fold(),
		logger: logger,
	}
	m.Replace(contacts)

	if len(m.contacts) > 0 && logger != nil {
		logger.Info("Initialized important contacts", zap.Strings("contacts", m.contacts))
	}
	return m
}

// Replace swaps the whole contact set, dropping blanks and duplicates
func (m *Matcher) Replace(contacts []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.contacts = m.contacts[:0:0]
	m.folded = m.folded[:0:0]
	for _, c := range contacts {
		c = strings.TrimSpace(c)
		if c == "" || m.indexLocked(c) >= 0 {
			continue
		}
		m.contacts = append(m.contacts, c)
		m.folded = append(m.folded, m.fold.String(c))
	}
}

// Add inserts a contact and reports whether the set changed
func (m *Matcher) Add(contact string) bool {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexLocked(contact) >= 0 {
		return false
	}
	m.contacts = append(m.contacts, contact)
	m.folded = append(m.folded, m.fold.String(contact))
	return true
}

// Remove deletes a contact and reports whether the set changed
func (m *Matcher) Remove(contact string) bool {
	contact = strings.TrimSpace(contact)

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(contact)
	if i < 0 {
		return false
	}
	m.contacts = append(m.contacts[:i], m.contacts[i+1:]...)
	m.folded = append(m.folded[:i], m.folded[i+1:]...)
	return true
}

// indexLocked finds an exact member; membership is case-sensitive like the stored list
func (m *Matcher) indexLocked(contact string) int {
	for i, c := range m.contacts {
		if c == contact {
			return i
		}
	}
	return -1
}

// List returns a copy of the contacts in insertion order
func (m *Matcher) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.contacts))
	copy(out, m.contacts)
	return out
}

// IsImportant reports whether any contact is a case-insensitive substring of sender
func (m *Matcher) IsImportant(sender string) bool {
	if sender == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.folded) == 0 {
		return false
	}
	folded := m.fold.String(sender)
	for i, c := range m.folded {
		if strings.Contains(folded, c) {
			if m.logger != nil {
				m.logger.Debug("Sender is an important contact",
					zap.String("contact", m.contacts[i]),
					zap.String("sender", sender))
			}
			return true
		}
	}
	return false
}
