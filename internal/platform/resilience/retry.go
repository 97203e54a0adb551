package resilience

import (
	"context"
	"errors"
	"time"
)

// Retry re-invokes the wrapped operation on failure, up to a fixed number of
// attempts with a fixed inter-attempt delay. A breaker-open rejection is
// never retried: the gate decision holds for the whole call.
type Retry struct {
	attempts int
	delay    time.Duration
}

// NewRetry creates a retry policy making at most attempts invocations.
func NewRetry(attempts int, delay time.Duration) *Retry {
	if attempts < 1 {
		attempts = 1
	}
	return &Retry{attempts: attempts, delay: delay}
}

// Do implements Policy.
func (r *Retry) Do(ctx context.Context, op func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 && r.delay > 0 {
			timer := time.NewTimer(r.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		err = op(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrCircuitOpen) {
			return err
		}
	}
	return err
}
