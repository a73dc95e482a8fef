package transport

import (
	"github.com/mikey/linkedin-prioritizer/internal/core"
)

// Actions understood by the message endpoint
const (
	ActionAnalyzeMessages        = "analyzeMessages"
	ActionAddImportantContact    = "addImportantContact"
	ActionRemoveImportantContact = "removeImportantContact"
	ActionToggleSort             = "toggleSort"
	ActionGetState               = "getState"
	ActionSendAutomatedResponse  = "sendAutomatedResponse"
	ActionProcessUnresponded     = "processUnresponded"
	ActionDisplayMessages        = "displayMessages"
	ActionMessagesAnalyzed       = "messagesAnalyzed"
)

// Envelope is a request on the message endpoint, discriminated by Action
type Envelope struct {
	Action       string         `json:"action"`
	Messages     []core.Message `json:"messages,omitempty"`
	Method       string         `json:"method,omitempty"`
	Contact      string         `json:"contact,omitempty"`
	MessageLink  string         `json:"messageLink,omitempty"`
	ResponseText string         `json:"responseText,omitempty"`
	Tab          string         `json:"tab,omitempty"`
}

// SuccessResponse answers contact mutations
type SuccessResponse struct {
	Success bool `json:"success"`
}

// AnalyzeResponse answers analyzeMessages
type AnalyzeResponse struct {
	Success     bool                `json:"success"`
	Categorized core.Categorization `json:"categorized"`
}

// ToggleResponse answers toggleSort
type ToggleResponse struct {
	Success  bool `json:"success"`
	IsSorted bool `json:"isSorted"`
}

// MessagesResponse answers displayMessages
type MessagesResponse struct {
	Messages []core.Message `json:"messages"`
}

// ErrorResponse is returned for malformed or failed requests
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Notification is a fire-and-forget event pushed to subscribers
type Notification struct {
	Action string `json:"action"`
	*core.AnalysisEvent
}
