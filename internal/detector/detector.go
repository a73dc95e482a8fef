package detector

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change is handled
const DefaultDebounce = 500 * time.Millisecond

// Change is a coalesced batch of triggers delivered after the debounce
type Change struct {
	// URL is set when the page navigated since the last change
	URL string
	// Navigated reports whether URL is a new location
	Navigated bool
	// Mutations is the number of list mutations observed
	Mutations int
}

// Handler reacts to a debounced change
type Handler func(ctx context.Context, change Change)

// Detector coalesces navigation and list mutation triggers into debounced
// changes and delivers them one at a time from Run.
type Detector struct {
	mu        sync.Mutex
	debounce  time.Duration
	handler   Handler
	logger    *zap.Logger
	lastURL   string
	pending   Change
	dirty     bool
	suspended int
	dropped   int
	wake      chan struct{}
}

// New creates a new change detector
func New(debounce time.Duration, handler Handler, logger *zap.Logger) *Detector {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Detector{
		debounce: debounce,
		handler:  handler,
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}
}

// ObserveURL records the current page location. Only a location different
// from the last observed one counts as a navigation.
func (d *Detector) ObserveURL(url string) {
	d.mu.Lock()
	if url == d.lastURL {
		d.mu.Unlock()
		return
	}
	d.lastURL = url
	d.pending.URL = url
	d.pending.Navigated = true
	d.dirty = true
	d.mu.Unlock()

	d.logger.Debug("Navigation observed", zap.String("url", url))
	d.signal()
}

// NotifyMutations records a batch of list mutations. Batches arriving while
// observation is suspended are dropped.
func (d *Detector) NotifyMutations(n int) {
	if n <= 0 {
		return
	}

	d.mu.Lock()
	if d.suspended > 0 {
		d.dropped += n
		d.mu.Unlock()
		return
	}
	d.pending.Mutations += n
	d.dirty = true
	d.mu.Unlock()

	d.signal()
}

// Suspend stops mutation observation until the matching Resume. Calls nest.
func (d *Detector) Suspend() {
	d.mu.Lock()
	d.suspended++
	d.mu.Unlock()
}

// Resume re-enables mutation observation once every Suspend has been matched
func (d *Detector) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.suspended == 0 {
		d.logger.Warn("Resume called without matching Suspend")
		return
	}
	d.suspended--
	if d.suspended == 0 && d.dropped > 0 {
		d.logger.Debug("Dropped self-inflicted mutations", zap.Int("count", d.dropped))
		d.dropped = 0
	}
}

// Guard runs fn with mutation observation suspended
func (d *Detector) Guard(fn func()) {
	d.Suspend()
	defer d.Resume()
	fn()
}

// Suspended reports whether observation is currently suspended
func (d *Detector) Suspended() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.suspended > 0
}

func (d *Detector) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Run delivers debounced changes to the handler until ctx is done. Each
// trigger restarts the quiet period; handler calls never overlap.
func (d *Detector) Run(ctx context.Context) error {
	// Reset discards any pending fire, so the timer needs no draining
	timer := time.NewTimer(d.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-d.wake:
			timer.Reset(d.debounce)

		case <-timer.C:
			change, ok := d.take()
			if !ok {
				continue
			}
			d.logger.Debug("Handling change",
				zap.Bool("navigated", change.Navigated),
				zap.Int("mutations", change.Mutations))
			d.handler(ctx, change)
		}
	}
}

func (d *Detector) take() (Change, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return Change{}, false
	}
	change := d.pending
	d.pending = Change{}
	d.dirty = false
	return change, true
}
