package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/mikey/linkedin-prioritizer/internal/core"
	"go.uber.org/zap"
)

// subscriberBuffer is how many notifications a slow subscriber may lag behind before events are dropped
const subscriberBuffer = 16

// Broker fans analysis notifications out to server-sent event subscribers.
// Delivery is fire-and-forget: a subscriber that falls behind misses events.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	logger *zap.Logger
}

// NewBroker creates a new notification broker
func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		subs:   make(map[chan []byte]struct{}),
		logger: logger,
	}
}

// MessagesAnalyzed implements core.Notifier
func (b *Broker) MessagesAnalyzed(_ context.Context, event *core.AnalysisEvent) error {
	payload, err := json.Marshal(Notification{Action: ActionMessagesAnalyzed, AnalysisEvent: event})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- payload:
		default:
			b.logger.Debug("Dropping notification for slow subscriber")
		}
	}
	return nil
}

func (b *Broker) subscribe() chan []byte {
	ch := make(chan []byte, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Subscribers returns the number of connected subscribers
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// ServeHTTP streams notifications as server-sent events until the client goes away
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.subscribe()
	defer b.unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case payload := <-ch:
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ActionMessagesAnalyzed, payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
