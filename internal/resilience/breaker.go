package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// Circuit breaker states. Transitions: closed → open → half-open → closed.
const (
	stateClosed = iota
	stateOpen
	stateHalfOpen
)

// breaker is a rolling-window failure-ratio circuit breaker. One breaker
// exists per configured pipeline; its state transitions are globally ordered
// relative to that pipeline instance.
//
//   - Closed: calls flow; outcomes are counted over a rolling sampling
//     window. Once the window holds at least minThroughput calls and the
//     failure ratio reaches threshold, the circuit opens.
//   - Open: all calls are rejected without reaching the transport. After
//     breakDuration the circuit moves to half-open.
//   - Half-open: exactly one trial call is allowed. Success closes the
//     circuit, failure re-opens it for another full break duration.
type breaker struct {
	threshold     float64
	window        time.Duration
	minThroughput int
	breakDuration time.Duration
	logger        *slog.Logger
	now           func() time.Time

	mu            sync.Mutex
	state         int
	windowStart   time.Time
	total         int
	failures      int
	openedAt      time.Time
	trialInFlight bool
}

func newBreaker(cfg Config, logger *slog.Logger) *breaker {
	return &breaker{
		threshold:     cfg.BreakerFailureThreshold,
		window:        cfg.BreakerSamplingWindow,
		minThroughput: cfg.BreakerMinimumThroughput,
		breakDuration: cfg.BreakerBreakDuration,
		logger:        logger,
		now:           time.Now,
	}
}

// rotateWindowLocked resets the sampling counters when the current window
// has elapsed. Callers must hold b.mu.
func (b *breaker) rotateWindowLocked(now time.Time) {
	if b.windowStart.IsZero() || now.Sub(b.windowStart) >= b.window {
		b.windowStart = now
		b.total = 0
		b.failures = 0
	}
}

// allow reports whether a call may proceed. In the open state it returns
// ErrCircuitOpen until the break duration elapses, then admits a single
// half-open trial.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	switch b.state {
	case stateOpen:
		if now.Sub(b.openedAt) < b.breakDuration {
			return ErrCircuitOpen
		}
		b.state = stateHalfOpen
		b.trialInFlight = true
		b.logger.Debug("circuit breaker half-open")
		return nil
	case stateHalfOpen:
		if b.trialInFlight {
			return ErrCircuitOpen
		}
		b.trialInFlight = true
		return nil
	default:
		b.rotateWindowLocked(now)
		return nil
	}
}

// record feeds the classified outcome of a completed attempt back into the
// state machine.
func (b *breaker) record(failure bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()

	if b.state == stateHalfOpen {
		b.trialInFlight = false
		if failure {
			b.state = stateOpen
			b.openedAt = now
			b.logger.Warn("circuit breaker re-opened, half-open trial failed")
			return
		}
		b.state = stateClosed
		b.windowStart = now
		b.total = 0
		b.failures = 0
		b.logger.Info("circuit breaker closed, backend recovered")
		return
	}

	if b.state == stateOpen {
		// Late result from a call admitted before the circuit opened.
		return
	}

	b.rotateWindowLocked(now)
	b.total++
	if failure {
		b.failures++
	}
	if b.total >= b.minThroughput &&
		float64(b.failures)/float64(b.total) >= b.threshold {
		b.state = stateOpen
		b.openedAt = now
		b.logger.Warn("circuit breaker opened",
			"failures", b.failures,
			"total", b.total,
			"threshold", b.threshold,
		)
	}
}

// abandonTrial releases the half-open trial slot when its call ended
// without a usable outcome, such as caller cancellation. The circuit stays
// half-open, so the next call becomes the trial instead of being rejected.
func (b *breaker) abandonTrial() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateHalfOpen && b.trialInFlight {
		b.trialInFlight = false
		b.logger.Debug("half-open trial abandoned")
	}
}

// snapshot returns the current state and window counters, for tests.
func (b *breaker) snapshot() (state, total, failures int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.total, b.failures
}
