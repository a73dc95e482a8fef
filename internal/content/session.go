package content

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/linkedin-prioritizer/internal/sorter"
)

// Session is the state of one page load. It is created on navigation and
// disposed on the next one; work started for a disposed session is discarded.
type Session struct {
	ID        string
	URL       string
	StartedAt time.Time
	Engine    *sorter.Engine

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	cancelAnalysis context.CancelFunc
}

func newSession(parent context.Context, url string, engine *sorter.Engine) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:        uuid.NewString(),
		URL:       url,
		StartedAt: time.Now(),
		Engine:    engine,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Context is cancelled when the session is disposed
func (s *Session) Context() context.Context {
	return s.ctx
}

// Active reports whether the session has not been disposed
func (s *Session) Active() bool {
	return s.ctx.Err() == nil
}

// beginAnalysis supersedes any analysis still running in this session
func (s *Session) beginAnalysis() (context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelAnalysis != nil {
		s.cancelAnalysis()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelAnalysis = cancel
	return ctx, cancel
}

// Close disposes the session
func (s *Session) Close() {
	s.cancel()
}
