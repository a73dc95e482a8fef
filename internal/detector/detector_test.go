package detector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type changeLog struct {
	mu      sync.Mutex
	changes []Change
	active  int
	overlap bool
}

func (l *changeLog) handle(ctx context.Context, c Change) {
	l.mu.Lock()
	l.active++
	if l.active > 1 {
		l.overlap = true
	}
	l.changes = append(l.changes, c)
	l.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	l.mu.Lock()
	l.active--
	l.mu.Unlock()
}

func (l *changeLog) list() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Change(nil), l.changes...)
}

func startDetector(t *testing.T, debounce time.Duration) (*Detector, *changeLog) {
	t.Helper()
	log := &changeLog{}
	d := New(debounce, log.handle, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
	return d, log
}

func TestDetector_CoalescesBursts(t *testing.T) {
	d, log := startDetector(t, 30*time.Millisecond)

	d.ObserveURL("https://www.linkedin.com/messaging/")
	for i := 0; i < 5; i++ {
		d.NotifyMutations(2)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return len(log.list()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	changes := log.list()
	require.Len(t, changes, 1, "one burst yields one change")
	assert.Equal(t, Change{URL: "https://www.linkedin.com/messaging/", Navigated: true, Mutations: 10}, changes[0])
}

func TestDetector_SameURLIgnored(t *testing.T) {
	d, log := startDetector(t, 10*time.Millisecond)

	d.ObserveURL("https://www.linkedin.com/messaging/thread/1")
	require.Eventually(t, func() bool { return len(log.list()) == 1 }, time.Second, 5*time.Millisecond)

	d.ObserveURL("https://www.linkedin.com/messaging/thread/1")
	time.Sleep(40 * time.Millisecond)
	assert.Len(t, log.list(), 1)

	d.ObserveURL("https://www.linkedin.com/messaging/thread/2")
	require.Eventually(t, func() bool { return len(log.list()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "https://www.linkedin.com/messaging/thread/2", log.list()[1].URL)
}

func TestDetector_SuspendDropsMutations(t *testing.T) {
	d, log := startDetector(t, 10*time.Millisecond)

	d.Guard(func() {
		assert.True(t, d.Suspended())
		d.NotifyMutations(3)
		d.Guard(func() { d.NotifyMutations(1) })
		assert.True(t, d.Suspended(), "guards nest")
	})
	assert.False(t, d.Suspended())

	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, log.list(), "self-inflicted mutations are not observed")

	d.NotifyMutations(1)
	require.Eventually(t, func() bool { return len(log.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, log.list()[0].Mutations)
}

func TestDetector_NavigationWhileSuspended(t *testing.T) {
	d, log := startDetector(t, 10*time.Millisecond)

	d.Suspend()
	d.ObserveURL("https://www.linkedin.com/messaging/")
	d.Resume()

	require.Eventually(t, func() bool { return len(log.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, log.list()[0].Navigated)
}

func TestDetector_HandlerCallsDoNotOverlap(t *testing.T) {
	d, log := startDetector(t, time.Millisecond)

	for i := 0; i < 20; i++ {
		d.NotifyMutations(1)
		time.Sleep(2 * time.Millisecond)
	}
	require.Eventually(t, func() bool {
		total := 0
		for _, c := range log.list() {
			total += c.Mutations
		}
		return total == 20
	}, time.Second, 5*time.Millisecond)

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.False(t, log.overlap)
}

func TestDetector_UnbalancedResume(t *testing.T) {
	d := New(0, func(context.Context, Change) {}, zaptest.NewLogger(t))
	d.Resume()
	assert.False(t, d.Suspended())
	assert.Equal(t, DefaultDebounce, d.debounce)
	d.NotifyMutations(0)
	assert.False(t, d.dirty)
}
