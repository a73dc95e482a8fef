package utils

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{"unlimited", "hello world", 0, "hello world"},
		{"within limit", "hello", 10, "hello"},
		{"collapses whitespace", "  hello \n\t world ", 0, "hello world"},
		{"truncates", "hello world", 5, "hello" + TruncationMarker},
		{"drops invalid bytes", "ok\xffok", 0, "okok"},
		{"rune boundary", "héllo", 2, "h" + TruncationMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tp.ProcessText(tt.text, tt.maxSize)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
