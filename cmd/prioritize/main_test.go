package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/mikey/linkedin-prioritizer/internal/classifier"
	"github.com/mikey/linkedin-prioritizer/internal/core"
)

const input = `[
	{"sender": "Jane Doe - Recruiter", "preview": "let's connect", "timestamp": "Mon"},
	{"sender": "Bob", "preview": "Thanks for the newsletter", "timestamp": "Jan 3"}
]`

func TestReadMessages(t *testing.T) {
	messages, err := readMessages(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	wrapped, err := readMessages(strings.NewReader(`{"messages": ` + input + `}`))
	require.NoError(t, err)
	assert.Equal(t, messages, wrapped)

	_, err = readMessages(strings.NewReader("  "))
	assert.ErrorContains(t, err, "no messages")

	_, err = readMessages(strings.NewReader("[{"))
	assert.ErrorContains(t, err, "failed to parse input")
}

func TestClassifyAndReport(t *testing.T) {
	rules := classifier.New(classifier.Options{ImportantContacts: []string{"Jane Doe"}}, zaptest.NewLogger(t))
	messages, err := readMessages(strings.NewReader(input))
	require.NoError(t, err)

	r, err := classify(context.Background(), rules, rules, core.MethodRule, messages, true)
	require.NoError(t, err)

	jane := core.Identity("Jane Doe - Recruiter", "let's connect", core.DefaultIdentityLength)
	assert.Equal(t, []string{jane}, r.Categorized[core.PriorityHigh])
	assert.Equal(t, core.PriorityHigh, r.Messages[0].Priority)
	assert.Equal(t, core.PriorityLow, r.Messages[1].Priority)
	assert.Equal(t, classifier.Score{Sender: 3, Content: 1, Total: 4}, r.Scores[jane])

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, r, "yaml"))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "rule", decoded["method"])
	assert.Contains(t, out.String(), "scores:")

	out.Reset()
	require.NoError(t, writeReport(&out, r, "json"))
	var back report
	require.NoError(t, json.Unmarshal(out.Bytes(), &back))
	assert.Equal(t, r.Categorized, back.Categorized)

	assert.ErrorContains(t, writeReport(&out, r, "xml"), "unsupported output format")
}
