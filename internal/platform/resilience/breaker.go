package resilience

import (
	"context"
	"sync"
	"time"
)

// State is the circuit breaker state.
type State string

const (
	// StateClosed admits all calls and tracks their outcomes.
	StateClosed State = "CLOSED"
	// StateOpen short-circuits all calls until the cooldown elapses.
	StateOpen State = "OPEN"
	// StateHalfOpen admits a bounded number of probe calls.
	StateHalfOpen State = "HALF_OPEN"
)

// BreakerConfig tunes a circuit breaker.
type BreakerConfig struct {
	// WindowSize is the number of recent call outcomes tracked while CLOSED.
	WindowSize int
	// FailureThreshold is the failure ratio over the window that trips the
	// breaker OPEN.
	FailureThreshold float64
	// MinimumCalls is the sample floor before the ratio is evaluated.
	MinimumCalls int
	// Cooldown is how long the breaker stays OPEN before probing.
	Cooldown time.Duration
	// ProbeCount is how many calls HALF_OPEN admits before deciding.
	ProbeCount int
	// ProbeThreshold is the probe success ratio required to close again.
	ProbeThreshold float64
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.WindowSize < 1 {
		c.WindowSize = 10
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 0.5
	}
	if c.MinimumCalls < 1 {
		c.MinimumCalls = c.WindowSize / 2
		if c.MinimumCalls < 1 {
			c.MinimumCalls = 1
		}
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 10 * time.Second
	}
	if c.ProbeCount < 1 {
		c.ProbeCount = 3
	}
	if c.ProbeThreshold <= 0 {
		c.ProbeThreshold = 0.5
	}
	return c
}

// Breaker is a three-state circuit breaker shared by every caller in an
// operation group. All state lives behind one mutex so concurrent callers
// cannot flip states inconsistently or double-count a HALF_OPEN probe.
type Breaker struct {
	cfg BreakerConfig
	now func() time.Time

	mu             sync.Mutex
	state          State
	outcomes       []bool // failure ring buffer, true = failed
	outcomePos     int
	outcomeCount   int
	failures       int
	openedAt       time.Time
	probesAdmitted int
	probesDone     int
	probeSuccesses int
}

// NewBreaker creates a CLOSED breaker with the given configuration.
func NewBreaker(cfg BreakerConfig) *Breaker {
	cfg = cfg.withDefaults()
	return &Breaker{
		cfg:      cfg,
		now:      time.Now,
		state:    StateClosed,
		outcomes: make([]bool, cfg.WindowSize),
	}
}

// State returns the current breaker state, transitioning OPEN → HALF_OPEN
// when the cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeProbe()
	return b.state
}

// Do implements Policy: gate the call, run it, record the outcome.
func (b *Breaker) Do(ctx context.Context, op func(context.Context) error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := op(ctx)
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeProbe()
	switch b.state {
	case StateClosed:
		return nil
	case StateHalfOpen:
		if b.probesAdmitted >= b.cfg.ProbeCount {
			return ErrCircuitOpen
		}
		b.probesAdmitted++
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.probesDone++
		if success {
			b.probeSuccesses++
		}
		if b.probesDone >= b.cfg.ProbeCount {
			ratio := float64(b.probeSuccesses) / float64(b.probesDone)
			if ratio >= b.cfg.ProbeThreshold {
				b.toClosed()
			} else {
				b.toOpen()
			}
		}
	case StateClosed:
		b.push(!success)
		if b.outcomeCount >= b.cfg.MinimumCalls {
			ratio := float64(b.failures) / float64(b.outcomeCount)
			if ratio >= b.cfg.FailureThreshold {
				b.toOpen()
			}
		}
	default:
		// A call admitted before the trip finished after it; the outcome no
		// longer affects an OPEN breaker.
	}
}

// maybeProbe transitions OPEN → HALF_OPEN once the cooldown has elapsed.
// Callers must hold b.mu.
func (b *Breaker) maybeProbe() {
	if b.state != StateOpen {
		return
	}
	if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return
	}
	b.state = StateHalfOpen
	b.probesAdmitted = 0
	b.probesDone = 0
	b.probeSuccesses = 0
}

// push records one outcome in the ring buffer. Callers must hold b.mu.
func (b *Breaker) push(failed bool) {
	if b.outcomeCount == len(b.outcomes) {
		if b.outcomes[b.outcomePos] {
			b.failures--
		}
	} else {
		b.outcomeCount++
	}
	b.outcomes[b.outcomePos] = failed
	if failed {
		b.failures++
	}
	b.outcomePos = (b.outcomePos + 1) % len(b.outcomes)
}

func (b *Breaker) toOpen() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.resetWindow()
}

func (b *Breaker) toClosed() {
	b.state = StateClosed
	b.resetWindow()
}

func (b *Breaker) resetWindow() {
	for i := range b.outcomes {
		b.outcomes[i] = false
	}
	b.outcomePos = 0
	b.outcomeCount = 0
	b.failures = 0
}
