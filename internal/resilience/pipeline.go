// Package resilience implements the policy pipeline wrapped around every
// outbound Postwave API call: a concurrency rate limiter, a total-request
// timeout, retries with exponential backoff, a circuit breaker, and a
// per-attempt timeout, composed in that fixed order.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Errors surfaced by the pipeline itself, as opposed to API-level errors
// carried through it.
var (
	// ErrCapacityExceeded is returned when the rate limiter's permit pool
	// and wait queue are both exhausted. It is never retried internally.
	ErrCapacityExceeded = errors.New("rate limiter capacity exceeded")

	// ErrCircuitOpen is returned when the circuit breaker is open; the call
	// never reaches the transport.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// TotalTimeoutError reports that the outer deadline covering the entire
// call, including all retries, was reached. It is terminal: no further
// attempts occur regardless of remaining retry budget.
type TotalTimeoutError struct {
	Timeout time.Duration
	Cause   error // last attempt outcome, if any
}

func (e *TotalTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request exceeded total timeout %v: %v", e.Timeout, e.Cause)
	}
	return fmt.Sprintf("request exceeded total timeout %v", e.Timeout)
}

// Unwrap returns the last attempt's error, if any.
func (e *TotalTimeoutError) Unwrap() error {
	return e.Cause
}

// Pipeline wraps outbound HTTP calls in the five resilience layers. One
// Pipeline is built per client and shared by all its requests; the breaker
// and limiter are its only mutable state and are safe for concurrent use.
type Pipeline struct {
	cfg     Config
	limiter *limiter // nil when rate limiting is disabled
	breaker *breaker
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for breaker transitions and limiter
// rejections. By default the pipeline is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New validates cfg and builds a pipeline. Invalid parameters fail fast
// with a *ConfigError before any call is made.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.breaker = newBreaker(cfg, p.logger)
	if cfg.RateLimiterEnabled {
		p.limiter = newLimiter(cfg, p.logger)
	}
	return p, nil
}

// Do executes call through the pipeline. call is invoked with a context
// bounded by the per-attempt timeout and must honor it; it may be invoked
// multiple times, sequentially, for retry-eligible methods. The returned
// response's Body must be closed by the caller; closing it releases the
// attempt's timeout resources.
//
// The wait for a rate-limiter permit happens before the total-timeout clock
// starts; everything after, including retry delays, counts against it.
func (p *Pipeline) Do(ctx context.Context, method string, call func(context.Context) (*http.Response, error)) (*http.Response, error) {
	if p.limiter != nil {
		if err := p.limiter.acquire(ctx); err != nil {
			return nil, err
		}
		defer p.limiter.release()
	}

	totalCtx, cancelTotal := context.WithTimeout(ctx, p.cfg.TotalTimeout)
	defer cancelTotal()

	for attempt := 0; ; attempt++ {
		if err := p.breaker.allow(); err != nil {
			return nil, err
		}

		resp, err := p.attempt(totalCtx, call)

		if err != nil {
			if ctx.Err() != nil {
				// Caller cancellation is not a backend-health signal: no
				// outcome is recorded, but a half-open trial slot must be
				// released or the breaker would reject every later call.
				p.breaker.abandonTrial()
				return nil, ctx.Err()
			}
			if totalCtx.Err() == context.DeadlineExceeded {
				p.breaker.record(true)
				return nil, &TotalTimeoutError{Timeout: p.cfg.TotalTimeout, Cause: err}
			}

			p.breaker.record(true)
			out := outcome{err: err}
			if attempt < p.cfg.MaxRetries && shouldRetry(method, out, p.cfg.RateLimiterEnabled) {
				if werr := p.waitBeforeRetry(ctx, totalCtx, attempt+1, err); werr != nil {
					return nil, werr
				}
				continue
			}
			return nil, err
		}

		out := outcome{statusCode: resp.StatusCode}
		p.breaker.record(breakerFailure(out))

		if attempt < p.cfg.MaxRetries && shouldRetry(method, out, p.cfg.RateLimiterEnabled) {
			drainBody(resp)
			if werr := p.waitBeforeRetry(ctx, totalCtx, attempt+1, fmt.Errorf("HTTP %d", resp.StatusCode)); werr != nil {
				return nil, werr
			}
			continue
		}

		return resp, nil
	}
}

// attempt runs a single call bounded by the per-attempt timeout. On success
// the response body is wrapped so the attempt context is released when the
// caller closes it.
func (p *Pipeline) attempt(ctx context.Context, call func(context.Context) (*http.Response, error)) (*http.Response, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	resp, err := call(attemptCtx)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// waitBeforeRetry sleeps for the backoff delay of the given retry attempt,
// translating an interrupted sleep into the right terminal error.
func (p *Pipeline) waitBeforeRetry(ctx, totalCtx context.Context, retryAttempt int, cause error) error {
	if err := waitRetry(totalCtx, p.cfg.RetryBaseDelay, retryAttempt); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TotalTimeoutError{Timeout: p.cfg.TotalTimeout, Cause: cause}
	}
	return nil
}

// cancelOnCloseBody ties the per-attempt timeout to the response body
// lifetime: the timeout keeps bounding the body read, and Close releases it.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnCloseBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// drainBody discards and closes a response body that is about to be retried,
// so the underlying connection can be reused.
func drainBody(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
