package resilience

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config tunes one operation group's policy stack. Fields carry env tags so
// app servers can embed the struct under a service-specific envPrefix.
type Config struct {
	RateLimitCapacity   int           `env:"RATE_LIMIT_CAPACITY" envDefault:"50"`
	RateLimitPeriod     time.Duration `env:"RATE_LIMIT_PERIOD" envDefault:"1s"`
	BreakerWindow       int           `env:"BREAKER_WINDOW" envDefault:"10"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerMinimumCalls int           `env:"BREAKER_MINIMUM_CALLS" envDefault:"5"`
	BreakerCooldown     time.Duration `env:"BREAKER_COOLDOWN" envDefault:"10s"`
	BreakerProbeCount   int           `env:"BREAKER_PROBE_COUNT" envDefault:"3"`
	BreakerProbeRatio   float64       `env:"BREAKER_PROBE_RATIO" envDefault:"0.6"`
	RetryAttempts       int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelay          time.Duration `env:"RETRY_DELAY" envDefault:"100ms"`
	Timeout             time.Duration `env:"TIMEOUT" envDefault:"2s"`
}

// DefaultConfig returns the tuning used when no environment overrides apply.
func DefaultConfig() Config {
	return Config{
		RateLimitCapacity:   50,
		RateLimitPeriod:     time.Second,
		BreakerWindow:       10,
		BreakerFailureRatio: 0.5,
		BreakerMinimumCalls: 5,
		BreakerCooldown:     10 * time.Second,
		BreakerProbeCount:   3,
		BreakerProbeRatio:   0.6,
		RetryAttempts:       3,
		RetryDelay:          100 * time.Millisecond,
		Timeout:             2 * time.Second,
	}
}

// Group holds the composed policy stacks for one named operation group. The
// rate limiter and circuit breaker are shared between the write and read
// stacks, so every outcome in the group feeds the same rolling statistics.
type Group struct {
	name    string
	limiter *RateLimiter
	breaker *Breaker
	write   Policy
	read    Policy
	tracer  trace.Tracer
}

// NewGroup builds the policy stacks for an operation group. Writes run under
// rate limiter → circuit breaker → retry → timeout; reads skip retry and
// timeout.
func NewGroup(name string, cfg Config) *Group {
	limiter := NewRateLimiter(cfg.RateLimitCapacity, cfg.RateLimitPeriod)
	breaker := NewBreaker(BreakerConfig{
		WindowSize:       cfg.BreakerWindow,
		FailureThreshold: cfg.BreakerFailureRatio,
		MinimumCalls:     cfg.BreakerMinimumCalls,
		Cooldown:         cfg.BreakerCooldown,
		ProbeCount:       cfg.BreakerProbeCount,
		ProbeThreshold:   cfg.BreakerProbeRatio,
	})
	return &Group{
		name:    name,
		limiter: limiter,
		breaker: breaker,
		write:   Chain(limiter, breaker, NewRetry(cfg.RetryAttempts, cfg.RetryDelay), NewTimeout(cfg.Timeout)),
		read:    Chain(limiter, breaker),
		tracer:  otel.Tracer("fulfillment/resilience"),
	}
}

// Name returns the operation group name.
func (g *Group) Name() string {
	return g.name
}

// BreakerState exposes the shared breaker state for diagnostics.
func (g *Group) BreakerState() State {
	return g.breaker.State()
}

// Execute runs op under the full write stack.
func (g *Group) Execute(ctx context.Context, operation string, op func(context.Context) error) error {
	return g.run(ctx, operation, g.write, op)
}

// ExecuteRead runs op under the lighter read stack.
func (g *Group) ExecuteRead(ctx context.Context, operation string, op func(context.Context) error) error {
	return g.run(ctx, operation, g.read, op)
}

func (g *Group) run(ctx context.Context, operation string, stack Policy, op func(context.Context) error) error {
	ctx, span := g.tracer.Start(ctx, "resilience.execute",
		trace.WithAttributes(
			attribute.String("resilience.group", g.name),
			attribute.String("resilience.operation", operation),
		),
	)
	defer span.End()

	err := stack.Do(ctx, op)
	span.SetAttributes(attribute.String("resilience.breaker_state", string(g.breaker.State())))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Run executes primary under the group's write stack and substitutes the
// fallback's result when any policy rejects the call or every attempt fails.
// The fallback receives the triggering error and must not fail.
func Run[T any](ctx context.Context, group *Group, operation string, primary func(context.Context) (T, error), fallback func(error) T) T {
	return runStack(ctx, group.Execute, operation, primary, fallback)
}

// RunRead is Run under the group's read stack.
func RunRead[T any](ctx context.Context, group *Group, operation string, primary func(context.Context) (T, error), fallback func(error) T) T {
	return runStack(ctx, group.ExecuteRead, operation, primary, fallback)
}

func runStack[T any](
	ctx context.Context,
	execute func(context.Context, string, func(context.Context) error) error,
	operation string,
	primary func(context.Context) (T, error),
	fallback func(error) T,
) T {
	var result T
	err := execute(ctx, operation, func(ctx context.Context) error {
		value, err := primary(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		return fallback(err)
	}
	return result
}
