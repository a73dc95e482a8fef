package delegate

import (
	"context"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// DefaultKeywords are sent with every delegated request
var DefaultKeywords = []string{"offer", "job", "urgent", "important"}

// Classifier classifies messages through an external service, one request at a time
type Classifier struct {
	client         core.PriorityClient
	queue          *Queue
	keywords       []string
	identityLength int
	logger         *zap.Logger
}

// NewClassifier creates a new delegated classifier
func NewClassifier(client core.PriorityClient, queue *Queue, keywords []string, identityLength int, logger *zap.Logger) *Classifier {
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	return &Classifier{
		client:         client,
		queue:          queue,
		keywords:       keywords,
		identityLength: identityLength,
		logger:         logger,
	}
}

// Analyze implements core.BatchClassifier. A failed request marks its message
// not-high and the batch carries on; only cancellation aborts it.
func (c *Classifier) Analyze(ctx context.Context, messages []*core.Message) (core.Categorization, error) {
	categorized := core.NewCategorization(core.ModeBinary)
	failures := 0

	_, err := c.queue.Run(ctx, len(messages), func(ctx context.Context, i int) {
		m := messages[i]
		if m == nil {
			return
		}
		m.Priority = core.PriorityNotHigh
		m.Keywords = nil

		resp, err := c.client.CheckPriority(ctx, core.PriorityRequest{
			HighPriorityKeywords: c.keywords,
			PreviewText:          m.Preview,
		})
		switch {
		case err != nil:
			failures++
			c.logger.Warn("Delegated classification failed, defaulting to not-high",
				zap.Int("index", i),
				zap.String("sender", m.Sender),
				zap.Error(err))
		case resp != nil && resp.IsHighPriority:
			m.Priority = core.PriorityHigh
			m.Keywords = resp.Keywords
		}

		id := m.ID
		if id == "" {
			id = core.Identity(m.Sender, m.Preview, c.identityLength)
		}
		categorized.Add(m.Priority, id)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Delegated classification complete",
		zap.Int("count", len(messages)),
		zap.Int("high", len(categorized[core.PriorityHigh])),
		zap.Int("failures", failures))
	return categorized, nil
}
