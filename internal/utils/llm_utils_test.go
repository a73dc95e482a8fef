package utils

import (
	"testing"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityPrompt(t *testing.T) {
	prompt := PriorityPrompt(core.PriorityRequest{
		HighPriorityKeywords: []string{"offer", "job"},
		PreviewText:          "We have a job for you",
	})
	assert.Contains(t, prompt, "offer, job")
	assert.Contains(t, prompt, "We have a job for you")
}

func TestParsePriorityResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    *core.PriorityResponse
		wantErr bool
	}{
		{
			name: "plain json",
			text: `{"isHighPriority": true, "keywords": ["job"]}`,
			want: &core.PriorityResponse{IsHighPriority: true, Keywords: []string{"job"}},
		},
		{
			name: "fenced",
			text: "Sure!\n```json\n{\"isHighPriority\": false, \"keywords\": []}\n```",
			want: &core.PriorityResponse{Keywords: []string{}},
		},
		{name: "no json", text: "I cannot help with that", wantErr: true},
		{name: "broken json", text: "{isHighPriority: yes}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePriorityResponse(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
