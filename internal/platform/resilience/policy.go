// Package resilience provides the composed fault-tolerance policies that
// guard every state-changing operation in the fulfillment services: rate
// limiting, circuit breaking, retrying, and timing out. Policies are plain
// decorators assembled once per named operation group and invoked explicitly,
// so the full stack an operation runs under is visible at the call site.
package resilience

import (
	"context"

	apperrors "github.com/louisbranch/fulfillment/internal/platform/errors"
)

// Rejection sentinels. Services match these with errors.Is to decide which
// degraded response to substitute.
var (
	// ErrThrottled indicates the rate limiter rejected the call outright.
	ErrThrottled = apperrors.New(apperrors.CodePolicyThrottled, "rate limit exceeded")
	// ErrCircuitOpen indicates the circuit breaker short-circuited the call.
	ErrCircuitOpen = apperrors.New(apperrors.CodePolicyCircuitOpen, "circuit breaker is open")
	// ErrTimeout indicates the operation exceeded its time budget.
	ErrTimeout = apperrors.New(apperrors.CodePolicyTimeout, "operation timed out")
)

// Policy attempts an operation and observes its outcome. Implementations may
// refuse to run the operation (rate limiter, open breaker), re-run it
// (retry), or bound it (timeout).
type Policy interface {
	Do(ctx context.Context, op func(context.Context) error) error
}

type chained struct {
	policies []Policy
}

// Chain composes policies outside-in: the first policy wraps all the others.
func Chain(policies ...Policy) Policy {
	return chained{policies: policies}
}

func (c chained) Do(ctx context.Context, op func(context.Context) error) error {
	run := op
	for i := len(c.policies) - 1; i >= 0; i-- {
		policy, next := c.policies[i], run
		run = func(ctx context.Context) error {
			return policy.Do(ctx, next)
		}
	}
	return run(ctx)
}
