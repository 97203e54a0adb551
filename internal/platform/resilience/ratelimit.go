package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiter admits at most capacity calls per refill window. The window
// resets wholesale once the period elapses, matching a token bucket that is
// refilled to capacity on a fixed cadence. Rejection is immediate; callers
// are never queued.
type RateLimiter struct {
	capacity int
	period   time.Duration
	now      func() time.Time

	mu          sync.Mutex
	windowStart time.Time
	admitted    int
}

// NewRateLimiter creates a limiter admitting capacity calls per period.
func NewRateLimiter(capacity int, period time.Duration) *RateLimiter {
	if capacity < 1 {
		capacity = 1
	}
	if period <= 0 {
		period = time.Second
	}
	return &RateLimiter{
		capacity: capacity,
		period:   period,
		now:      time.Now,
	}
}

// Allow consumes one admission token, or returns ErrThrottled when the
// current window is exhausted.
func (l *RateLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.windowStart.IsZero() || now.Sub(l.windowStart) >= l.period {
		l.windowStart = now
		l.admitted = 0
	}
	if l.admitted >= l.capacity {
		return ErrThrottled
	}
	l.admitted++
	return nil
}

// Do implements Policy.
func (l *RateLimiter) Do(ctx context.Context, op func(context.Context) error) error {
	if err := l.Allow(); err != nil {
		return err
	}
	return op(ctx)
}
