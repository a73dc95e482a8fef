package delegate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Clock abstracts waiting so the inter-item delay can be observed in tests
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RealClock waits on wall-clock timers
func RealClock() Clock {
	return realClock{}
}

// Queue runs jobs strictly one after another with a fixed pause between them.
// Job N+1 never starts before job N has returned and the delay has elapsed.
type Queue struct {
	delay  time.Duration
	clock  Clock
	logger *zap.Logger
}

// NewQueue creates a new sequential queue
func NewQueue(delay time.Duration, clock Clock, logger *zap.Logger) *Queue {
	if clock == nil {
		clock = RealClock()
	}
	return &Queue{
		delay:  delay,
		clock:  clock,
		logger: logger,
	}
}

// Delay returns the configured inter-item delay
func (q *Queue) Delay() time.Duration {
	return q.delay
}

// Run calls job for every index in order. It returns early only when ctx is
// cancelled, reporting how many jobs completed.
func (q *Queue) Run(ctx context.Context, n int, job func(ctx context.Context, i int)) (int, error) {
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := q.clock.Sleep(ctx, q.delay); err != nil {
				q.logger.Debug("Queue stopped while waiting", zap.Int("completed", i), zap.Error(err))
				return i, err
			}
		}
		if err := ctx.Err(); err != nil {
			return i, err
		}
		job(ctx, i)
	}
	return n, nil
}
