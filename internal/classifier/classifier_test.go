package classifier

import (
	"context"
	"testing"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClassifier(t *testing.T, mode core.Mode, contacts ...string) *Classifier {
	t.Helper()
	return New(Options{Mode: mode, ImportantContacts: contacts}, zaptest.NewLogger(t))
}

func TestClassify_MultiBucket(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket, "Jane Doe")

	tests := []struct {
		name string
		msg  core.Message
		want core.Priority
		sum  Score
	}{
		{
			name: "important contact with medium keyword",
			msg:  core.Message{Sender: "Jane Doe - Recruiter", Preview: "let's connect"},
			want: core.PriorityHigh,
			sum:  Score{Sender: 3, Content: 1, Total: 4},
		},
		{
			name: "high keyword and recent",
			msg:  core.Message{Sender: "John Smith", Preview: "Urgent: contract review", Timestamp: "2 hours ago"},
			want: core.PriorityMedium,
			sum:  Score{Content: 2, Recency: 1, Total: 3},
		},
		{
			name: "managerial sender with question",
			msg:  core.Message{Sender: "Alice, Director of Engineering", Preview: "quick question"},
			want: core.PriorityMedium,
			sum:  Score{Sender: 2, Content: 1, Total: 3},
		},
		{
			name: "low keyword only",
			msg:  core.Message{Sender: "Bob", Preview: "Thanks for the newsletter", Timestamp: "Jan 3"},
			want: core.PriorityLow,
		},
		{
			name: "managerial sender just now without preview",
			msg:  core.Message{Sender: "CEO at Startup", Timestamp: "Just now"},
			want: core.PriorityMedium,
			sum:  Score{Sender: 2, Recency: 1, Total: 3},
		},
		{
			name: "everything at once",
			msg:  core.Message{Sender: "Jane Doe", Preview: "Interview deadline", Timestamp: "today"},
			want: core.PriorityHigh,
			sum:  Score{Sender: 3, Content: 2, Recency: 1, Total: 6},
		},
		{
			name: "empty message",
			msg:  core.Message{},
			want: core.PriorityLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			assert.Equal(t, tt.want, c.Classify(&msg))
			assert.Equal(t, tt.sum, c.Explain(&msg))
		})
	}
}

func TestClassify_Binary(t *testing.T) {
	c := newTestClassifier(t, core.ModeBinary, "Jane Doe")

	tests := []struct {
		name string
		msg  core.Message
		want core.Priority
	}{
		{"contact short-circuits", core.Message{Sender: "Jane Doe - Recruiter", Preview: "let's connect"}, core.PriorityHigh},
		{"managerial sender", core.Message{Sender: "VP Sales", Preview: "hi"}, core.PriorityHigh},
		{"high keyword", core.Message{Sender: "Bob", Preview: "Job offer inside"}, core.PriorityHigh},
		{"recency hint", core.Message{Sender: "Bob", Preview: "hi", Timestamp: "5 minutes ago"}, core.PriorityHigh},
		{"medium keyword is not high", core.Message{Sender: "Bob", Preview: "let's connect", Timestamp: "Mon"}, core.PriorityNotHigh},
		{"empty message", core.Message{}, core.PriorityNotHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			assert.Equal(t, tt.want, c.Classify(&msg))
		})
	}
}

func TestClassify_NilMessage(t *testing.T) {
	assert.Equal(t, core.PriorityLow, newTestClassifier(t, core.ModeMultiBucket).Classify(nil))
	assert.Equal(t, core.PriorityNotHigh, newTestClassifier(t, core.ModeBinary).Classify(nil))
}

func TestClassify_Deterministic(t *testing.T) {
	a := newTestClassifier(t, core.ModeMultiBucket, "Jane Doe")
	b := newTestClassifier(t, core.ModeMultiBucket, "Jane Doe")

	msgs := []core.Message{
		{Sender: "Jane Doe", Preview: "hello"},
		{Sender: "Bob", Preview: "Urgent partnership proposal", Timestamp: "1 hour ago"},
		{Sender: "Carol", Preview: "webinar next week"},
	}
	for _, m := range msgs {
		m := m
		first := a.Classify(&m)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, a.Classify(&m))
			assert.Equal(t, first, b.Classify(&m))
		}
	}
}

func TestClassifyAll(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket, "Jane Doe")

	msgs := []*core.Message{
		{Sender: "Jane Doe", Preview: "Interview tomorrow"},
		{ID: "fixed-id", Sender: "Bob", Preview: "Thanks!"},
		nil,
		{Sender: "John Smith", Preview: "quick question", Timestamp: "today"},
	}

	got := c.ClassifyAll(msgs)

	assert.Equal(t, core.PriorityHigh, msgs[0].Priority)
	assert.Equal(t, core.PriorityLow, msgs[1].Priority)
	assert.Equal(t, core.PriorityMedium, msgs[3].Priority)

	assert.Equal(t, []string{"Jane Doe-Interview tomorrow"}, got[core.PriorityHigh])
	assert.Equal(t, []string{"John Smith-quick question"}, got[core.PriorityMedium])
	assert.Equal(t, []string{"fixed-id"}, got[core.PriorityLow])
	assert.Empty(t, msgs[0].ID, "identity is derived without writing the message")
}

func TestClassifyAll_BinaryShape(t *testing.T) {
	c := newTestClassifier(t, core.ModeBinary)
	got, err := c.Analyze(context.Background(), []*core.Message{
		{Sender: "Bob", Preview: "urgent"},
		{Sender: "Bob", Preview: "hello"},
	})
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, []string{"Bob-urgent"}, got[core.PriorityHigh])
	assert.Equal(t, []string{"Bob-hello"}, got[core.PriorityNotHigh])
}

func TestAddRemoveImportantContact(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket)

	assert.True(t, c.AddImportantContact("Acme Corp"))
	assert.False(t, c.AddImportantContact("Acme Corp"))
	assert.Equal(t, []string{"Acme Corp"}, c.ImportantContacts())

	msg := core.Message{Sender: "Sales at ACME CORP"}
	assert.Equal(t, 3, c.Explain(&msg).Sender)

	assert.True(t, c.RemoveImportantContact("Acme Corp"))
	assert.False(t, c.RemoveImportantContact("Acme Corp"))
	assert.Empty(t, c.ImportantContacts())
	assert.Equal(t, 0, c.Explain(&msg).Sender)
}

func TestMergePreferences(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket, "Old Contact")
	msg := core.Message{Sender: "Bob", Preview: "kubernetes chat", Timestamp: "today"}
	assert.Equal(t, core.PriorityLow, c.Classify(&msg))

	defaultHigh := len(c.patterns[core.PriorityHigh])
	defaultMedium := len(c.patterns[core.PriorityMedium])

	prefs := core.Preferences{
		ImportantContacts: []string{"New Contact"},
		CustomKeywords: map[core.Priority][]string{
			core.PriorityMedium: {"kubernetes", "  "},
			"bogus":             {"ignored"},
		},
		PriorityTags: []string{"golang"},
	}
	c.MergePreferences(prefs)
	c.MergePreferences(prefs)

	assert.Equal(t, []string{"New Contact"}, c.ImportantContacts(), "contacts are replaced")
	assert.Equal(t, core.PriorityMedium, c.Classify(&msg), "custom keywords extend the defaults")
	assert.Len(t, c.patterns[core.PriorityMedium], defaultMedium+1, "repeated merges do not accumulate")
	assert.Len(t, c.patterns[core.PriorityHigh], defaultHigh+1)

	tagged := core.Message{Sender: "Bob", Preview: "Golang role"}
	assert.Equal(t, 2, c.Explain(&tagged).Content, "priority tags count as high keywords")

	urgent := core.Message{Sender: "Bob", Preview: "urgent"}
	assert.Equal(t, 2, c.Explain(&urgent).Content, "defaults survive a merge")
}

func TestMergePreferences_AbsentContactsKept(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket, "Jane Doe")
	c.MergePreferences(core.Preferences{})
	assert.Equal(t, []string{"Jane Doe"}, c.ImportantContacts())

	c.MergePreferences(core.Preferences{ImportantContacts: []string{}})
	assert.Empty(t, c.ImportantContacts(), "an empty list present in preferences still replaces")
}

func TestSetRecencyHints(t *testing.T) {
	c := newTestClassifier(t, core.ModeMultiBucket)
	msg := core.Message{Timestamp: "Yesterday"}
	assert.Equal(t, 0, c.Explain(&msg).Recency)

	c.SetRecencyHints([]string{" YESTERDAY ", ""})
	assert.Equal(t, 1, c.Explain(&msg).Recency)
}
