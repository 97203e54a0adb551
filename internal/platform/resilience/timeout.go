package resilience

import (
	"context"
	"time"
)

// Timeout bounds the wrapped operation's wall-clock duration. On expiry the
// attempt's result is abandoned and ErrTimeout is returned; the underlying
// work sees a cancelled context but is not otherwise interrupted.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a timeout policy with the given bound.
func NewTimeout(limit time.Duration) *Timeout {
	if limit <= 0 {
		limit = 2 * time.Second
	}
	return &Timeout{limit: limit}
}

// Do implements Policy.
func (t *Timeout) Do(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ErrTimeout
	}
}
