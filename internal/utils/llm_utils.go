package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mikey/linkedin-prioritizer/internal/core"
)

// PrioritySystemPrompt is the system instruction for chat-style models
const PrioritySystemPrompt = "You are a message triage system. Respond only with JSON."

const priorityPromptFormat = `You triage LinkedIn conversations. Decide whether the following message preview is high priority.
A message is high priority when it is about any of these topics: %s.
Respond with a JSON object containing:
- isHighPriority: boolean (true if the message is high priority)
- keywords: array of strings (the topics or words that made it high priority, empty otherwise)

Message preview:
%s

Respond only with the JSON object and nothing else.`

// PriorityPrompt builds the classification prompt for an LLM
func PriorityPrompt(req core.PriorityRequest) string {
	return fmt.Sprintf(priorityPromptFormat, strings.Join(req.HighPriorityKeywords, ", "), req.PreviewText)
}

// ParsePriorityResponse decodes a model answer, extracting the outermost JSON
// object when the model wrapped it in prose or code fences
func ParsePriorityResponse(text string) (*core.PriorityResponse, error) {
	var resp core.PriorityResponse
	err := json.Unmarshal([]byte(text), &resp)
	if err == nil {
		return &resp, nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &resp, nil
}
