package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		preview string
		length  int
		want    string
	}{
		{"truncates preview", "Jane Doe", "Hello there, are you open to a new role?", 20, "Jane Doe-Hello there, are you"},
		{"short preview kept", "Jane Doe", "hi", 20, "Jane Doe-hi"},
		{"whitespace collapsed", "  Jane   Doe ", "hi\n  there", 20, "Jane Doe-hi there"},
		{"default length", "A", "0123456789012345678901234", 0, "A-01234567890123456789"},
		{"custom length", "A", "abcdef", 3, "A-abc"},
		{"runes not bytes", "Zo\u00eb", "h\u00e9llo w\u00f6rld", 5, "Zo\u00eb-h\u00e9llo"},
		{"empty", "", "", 20, "Unknown-"},
		{"blank sender", "  ", "Job offer inside", 20, "Unknown-Job offer inside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identity(tt.sender, tt.preview, tt.length))
		})
	}
}

func TestIdentity_StableAcrossNormalizationForms(t *testing.T) {
	composed := "Zo\u00eb"
	decomposed := "Zoe\u0308"
	assert.Equal(t, Identity(composed, "hi", 20), Identity(decomposed, "hi", 20))
}

func TestMessage_EnsureID(t *testing.T) {
	m := &Message{Sender: "Jane", Preview: "hello"}
	assert.Equal(t, "Jane-hello", m.EnsureID(20))

	m.Preview = "changed"
	assert.Equal(t, "Jane-hello", m.EnsureID(20), "an existing id is kept")
}

func TestCategorization_Weights(t *testing.T) {
	c := Categorization{
		PriorityHigh:   {"a"},
		PriorityMedium: {"b"},
		PriorityLow:    {"c"},
	}

	multi := c.Weights(ModeMultiBucket)
	assert.Equal(t, 3, multi["a"])
	assert.Equal(t, 2, multi["b"])
	assert.Equal(t, 1, multi["c"])
	assert.Equal(t, 0, multi["missing"])

	binary := c.Weights(ModeBinary)
	assert.Equal(t, 1, binary["a"])
	assert.Equal(t, 0, binary["b"])
	assert.Equal(t, 0, binary["c"])
}

func TestCategorization_Lookup(t *testing.T) {
	c := NewCategorization(ModeMultiBucket)
	c.Add(PriorityMedium, "x")

	p, ok := c.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, PriorityMedium, p)

	p, ok = c.Lookup("y")
	assert.False(t, ok)
	assert.Equal(t, PriorityUnassigned, p)
	assert.Equal(t, 1, c.Count())
}

func TestParseModeAndMethod(t *testing.T) {
	assert.Equal(t, ModeBinary, ParseMode("Binary"))
	assert.Equal(t, ModeMultiBucket, ParseMode(""))
	assert.Equal(t, MethodAI, ParseMethod("ai"))
	assert.Equal(t, MethodRule, ParseMethod("anything"))
}
