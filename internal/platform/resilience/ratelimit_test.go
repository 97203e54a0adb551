package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiterAdmitsExactlyCapacityPerWindow(t *testing.T) {
	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(3, time.Second)
	limiter.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(); err != nil {
			t.Fatalf("call %d within capacity rejected: %v", i+1, err)
		}
	}
	if err := limiter.Allow(); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled for call over capacity, got %v", err)
	}
}

func TestRateLimiterRefillsAfterPeriod(t *testing.T) {
	current := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, time.Second)
	limiter.now = func() time.Time { return current }

	if err := limiter.Allow(); err != nil {
		t.Fatalf("first call rejected: %v", err)
	}
	if err := limiter.Allow(); !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected throttle within window, got %v", err)
	}

	current = current.Add(time.Second)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("call after refill rejected: %v", err)
	}
}

func TestRateLimiterDoSkipsOperationWhenThrottled(t *testing.T) {
	limiter := NewRateLimiter(1, time.Hour)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("prime limiter: %v", err)
	}

	invoked := false
	err := limiter.Do(context.Background(), func(context.Context) error {
		invoked = true
		return nil
	})
	if !errors.Is(err, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", err)
	}
	if invoked {
		t.Fatalf("operation must not run when throttled")
	}
}
