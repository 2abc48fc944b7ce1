package resilience

import (
	"context"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// limiter is a bounded concurrency gate: permitLimit calls may be in flight
// at once, up to queueLimit further callers wait for a permit in FIFO order,
// and anyone beyond that fails immediately with ErrCapacityExceeded rather
// than queuing indefinitely.
type limiter struct {
	sem        *semaphore.Weighted
	queueLimit int64
	waiting    atomic.Int64
	logger     *slog.Logger
}

func newLimiter(cfg Config, logger *slog.Logger) *limiter {
	return &limiter{
		sem:        semaphore.NewWeighted(int64(cfg.RateLimiterPermitLimit)),
		queueLimit: int64(cfg.RateLimiterQueueLimit),
		logger:     logger,
	}
}

// acquire obtains a permit, waiting in the queue if necessary. The caller
// must invoke release exactly once after the call completes. Cancelling ctx
// aborts a queued wait with the context's error.
func (l *limiter) acquire(ctx context.Context) error {
	if l.sem.TryAcquire(1) {
		return nil
	}

	// The waiter count is checked before joining the semaphore's FIFO wait
	// list; under heavy contention it can transiently overshoot by the
	// number of racing callers, which only makes rejection stricter.
	if l.waiting.Add(1) > l.queueLimit {
		l.waiting.Add(-1)
		l.logger.Debug("rate limiter queue full, rejecting call")
		return ErrCapacityExceeded
	}
	defer l.waiting.Add(-1)

	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	return nil
}

func (l *limiter) release() {
	l.sem.Release(1)
}
