package content

import (
	"context"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
)

// Sink receives raw page triggers
type Sink interface {
	ObserveURL(url string)
	NotifyMutations(n int)
}

// Page is the messaging page the controller drives
type Page interface {
	sorter.Container

	// URL returns the current location
	URL(ctx context.Context) (string, error)

	// ScrapeMessages extracts the visible conversation cards
	ScrapeMessages(ctx context.Context) ([]core.Message, error)

	// MarkPriorities refreshes the high-priority indicators
	MarkPriorities(ctx context.Context, categorized core.Categorization) error

	// SendResponse opens a conversation and sends a reply
	SendResponse(ctx context.Context, link, text string) (core.SendResult, error)

	// Watch reports navigations and list mutations to sink until ctx is done
	Watch(ctx context.Context, sink Sink) error
}

// Analyzer classifies scraped messages and serves the persisted result
type Analyzer interface {
	AnalyzeMessages(ctx context.Context, messages []core.Message, method core.Method) (core.Categorization, error)
	LoadCategorization(ctx context.Context) (core.Categorization, error)
}
