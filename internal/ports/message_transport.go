package ports

import (
	"context"

	"github.com/mikey/linkedin-prioritizer/internal/automation"
	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
)

// MessageTransport defines the interface for the request/response channel the extension talks to
type MessageTransport interface {
	// Start starts serving requests
	Start() error

	// Stop stops the transport, waiting for in-flight requests until ctx is done
	Stop(ctx context.Context) error
}

// Prioritizer is the background side of the transport
type Prioritizer interface {
	AnalyzeMessages(ctx context.Context, messages []core.Message, method core.Method) (core.Categorization, error)
	AddImportantContact(ctx context.Context, name string) bool
	RemoveImportantContact(ctx context.Context, name string) bool
	Messages(ctx context.Context, bucket string) ([]core.Message, error)
}

// PageControl is the content side of the transport
type PageControl interface {
	ToggleSort(ctx context.Context) (bool, error)
	State() sorter.State
	SendAutomatedResponse(ctx context.Context, link, text string) core.SendResult
}

// Automation answers unresponded conversations
type Automation interface {
	ProcessUnresponded(ctx context.Context) (automation.Result, error)
}
