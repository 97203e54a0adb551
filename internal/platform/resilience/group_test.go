package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func newTestGroup() *Group {
	cfg := DefaultConfig()
	cfg.RateLimitCapacity = 100
	cfg.RetryAttempts = 2
	cfg.RetryDelay = 0
	cfg.Timeout = 200 * time.Millisecond
	cfg.BreakerMinimumCalls = 3
	cfg.BreakerFailureRatio = 1.0
	return NewGroup("payment", cfg)
}

func TestRunReturnsPrimaryResult(t *testing.T) {
	group := newTestGroup()
	got := Run(context.Background(), group, "process", func(context.Context) (string, error) {
		return "ok", nil
	}, func(error) string {
		return "degraded"
	})
	if got != "ok" {
		t.Fatalf("expected primary result, got %q", got)
	}
}

func TestRunSubstitutesFallbackOnExhaustedRetries(t *testing.T) {
	group := newTestGroup()
	attempts := 0
	var seen error
	got := Run(context.Background(), group, "process", func(context.Context) (string, error) {
		attempts++
		return "", fmt.Errorf("gateway down")
	}, func(err error) string {
		seen = err
		return "degraded"
	})
	if got != "degraded" {
		t.Fatalf("expected fallback result, got %q", got)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts before fallback, got %d", attempts)
	}
	if seen == nil {
		t.Fatalf("expected fallback to receive the triggering error")
	}
}

func TestRunSubstitutesFallbackOnTimeout(t *testing.T) {
	group := newTestGroup()
	var seen error
	got := Run(context.Background(), group, "process", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}, func(err error) string {
		seen = err
		return "degraded"
	})
	if got != "degraded" {
		t.Fatalf("expected fallback result on timeout, got %q", got)
	}
	if !errors.Is(seen, ErrTimeout) {
		t.Fatalf("expected ErrTimeout in fallback, got %v", seen)
	}
}

func TestRunFallbackOnRateLimitRejection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimitCapacity = 1
	cfg.RateLimitPeriod = time.Hour
	group := NewGroup("shipping", cfg)

	first := Run(context.Background(), group, "create", func(context.Context) (string, error) {
		return "ok", nil
	}, func(error) string { return "degraded" })
	if first != "ok" {
		t.Fatalf("expected first call to pass, got %q", first)
	}

	var seen error
	second := Run(context.Background(), group, "create", func(context.Context) (string, error) {
		return "ok", nil
	}, func(err error) string {
		seen = err
		return "degraded"
	})
	if second != "degraded" {
		t.Fatalf("expected throttled call to degrade, got %q", second)
	}
	if !errors.Is(seen, ErrThrottled) {
		t.Fatalf("expected ErrThrottled, got %v", seen)
	}
}

func TestGroupSharesBreakerBetweenReadAndWriteStacks(t *testing.T) {
	group := newTestGroup()
	for i := 0; i < 3; i++ {
		_ = group.Execute(context.Background(), "process", func(context.Context) error {
			return fmt.Errorf("downstream unavailable")
		})
	}
	if got := group.BreakerState(); got != StateOpen {
		t.Fatalf("expected shared breaker to be OPEN, got %s", got)
	}

	invoked := false
	var seen error
	_ = RunRead(context.Background(), group, "get", func(context.Context) (string, error) {
		invoked = true
		return "ok", nil
	}, func(err error) string {
		seen = err
		return "degraded"
	})
	if invoked {
		t.Fatalf("read primary must not run while the shared breaker is open")
	}
	if !errors.Is(seen, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen on read path, got %v", seen)
	}
}
