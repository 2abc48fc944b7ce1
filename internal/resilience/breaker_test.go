package resilience

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// fakeClock drives a breaker deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestBreaker(cfg Config) (*breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := newBreaker(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	b.now = clock.now
	return b, clock
}

func breakerConfig() Config {
	cfg := DefaultConfig()
	cfg.BreakerFailureThreshold = 0.1
	cfg.BreakerSamplingWindow = 30 * time.Second
	cfg.BreakerMinimumThroughput = 10
	cfg.BreakerBreakDuration = 30 * time.Second
	return cfg
}

func TestBreakerOpensAtThresholdWithMinimumThroughput(t *testing.T) {
	// Scenario: 10 calls in the window, 2 failures: 20% >= 10% threshold.
	b, _ := newTestBreaker(breakerConfig())

	for i := 0; i < 8; i++ {
		if err := b.allow(); err != nil {
			t.Fatalf("allow() during closed state: %v", err)
		}
		b.record(false)
	}
	for i := 0; i < 2; i++ {
		if err := b.allow(); err != nil {
			t.Fatalf("allow() during closed state: %v", err)
		}
		b.record(true)
	}

	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("allow() after threshold crossed = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerStaysClosedBelowMinimumThroughput(t *testing.T) {
	b, _ := newTestBreaker(breakerConfig())

	// 9 failures in a row: ratio 100% but throughput below the minimum.
	for i := 0; i < 9; i++ {
		if err := b.allow(); err != nil {
			t.Fatalf("allow(): %v", err)
		}
		b.record(true)
	}

	if err := b.allow(); err != nil {
		t.Errorf("allow() below minimum throughput = %v, want nil", err)
	}
}

func TestBreakerInterleavedSuccessesDoNotResetRatio(t *testing.T) {
	b, _ := newTestBreaker(breakerConfig())

	// failure, success, failure, then 7 successes: 2/10 = 20% >= 10%.
	pattern := []bool{true, false, true, false, false, false, false, false, false, false}
	for _, failure := range pattern {
		if err := b.allow(); err != nil {
			t.Fatalf("allow(): %v", err)
		}
		b.record(failure)
	}

	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("allow() = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerWindowRotationResetsCounts(t *testing.T) {
	b, clock := newTestBreaker(breakerConfig())

	for i := 0; i < 9; i++ {
		if err := b.allow(); err != nil {
			t.Fatalf("allow(): %v", err)
		}
		b.record(true)
	}

	clock.advance(31 * time.Second)

	// The old window's 9 failures must not combine with the new window.
	if err := b.allow(); err != nil {
		t.Fatalf("allow() after window rotation: %v", err)
	}
	b.record(true)

	_, total, failures := b.snapshot()
	if total != 1 || failures != 1 {
		t.Errorf("counters after rotation = (%d, %d), want (1, 1)", total, failures)
	}
}

func TestBreakerHalfOpenTrialRecovers(t *testing.T) {
	b, clock := newTestBreaker(breakerConfig())

	for i := 0; i < 10; i++ {
		b.allow()
		b.record(true)
	}
	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("breaker did not open")
	}

	clock.advance(30 * time.Second)

	// One trial call is admitted; concurrent callers are still rejected.
	if err := b.allow(); err != nil {
		t.Fatalf("allow() after break duration = %v, want half-open trial", err)
	}
	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second allow() during half-open trial = %v, want ErrCircuitOpen", err)
	}

	b.record(false)

	if err := b.allow(); err != nil {
		t.Errorf("allow() after successful trial = %v, want nil (closed)", err)
	}
	state, total, failures := b.snapshot()
	if state != stateClosed || total != 0 || failures != 0 {
		t.Errorf("state after recovery = (%d, %d, %d), want closed with reset counters",
			state, total, failures)
	}
}

func TestBreakerAbandonedTrialFreesSlotForNextCall(t *testing.T) {
	b, clock := newTestBreaker(breakerConfig())

	for i := 0; i < 10; i++ {
		b.allow()
		b.record(true)
	}

	clock.advance(30 * time.Second)
	if err := b.allow(); err != nil {
		t.Fatalf("half-open trial not admitted: %v", err)
	}

	// The trial ended without an outcome (caller cancelled). The slot must
	// come free so the next call can be the trial.
	b.abandonTrial()

	if err := b.allow(); err != nil {
		t.Fatalf("allow() after abandoned trial = %v, want a fresh trial", err)
	}
	b.record(false)

	if err := b.allow(); err != nil {
		t.Errorf("allow() after successful trial = %v, want nil (closed)", err)
	}
}

func TestBreakerAbandonTrialIgnoredOutsideHalfOpen(t *testing.T) {
	b, _ := newTestBreaker(breakerConfig())

	b.abandonTrial()
	if err := b.allow(); err != nil {
		t.Errorf("allow() = %v, want nil in closed state", err)
	}

	for i := 0; i < 10; i++ {
		b.allow()
		b.record(true)
	}
	b.abandonTrial()
	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("allow() = %v, abandonTrial must not reopen a closed circuit early", err)
	}
}

func TestBreakerHalfOpenTrialFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(breakerConfig())

	for i := 0; i < 10; i++ {
		b.allow()
		b.record(true)
	}

	clock.advance(30 * time.Second)
	if err := b.allow(); err != nil {
		t.Fatalf("half-open trial not admitted: %v", err)
	}
	b.record(true)

	// Re-opened for another full break duration.
	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("allow() after failed trial = %v, want ErrCircuitOpen", err)
	}
	clock.advance(29 * time.Second)
	if err := b.allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("allow() before full break duration = %v, want ErrCircuitOpen", err)
	}
	clock.advance(time.Second)
	if err := b.allow(); err != nil {
		t.Errorf("allow() after full break duration = %v, want half-open trial", err)
	}
}
