package resilience

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"
)

// retryJitter is the randomization factor applied to retry delays to avoid
// thundering-herd synchronization across clients.
const retryJitter = 0.2

// safeMethod reports whether repeating the request cannot duplicate a side
// effect. POST and PATCH are unsafe; every Postwave operation is a POST, so
// in practice no API call is ever retried. Methods outside both sets are
// treated as unsafe.
func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace,
		http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// outcome describes a single completed HTTP attempt for classification.
// Exactly one of statusCode or err is meaningful: statusCode is zero when
// the attempt failed at the transport level.
type outcome struct {
	statusCode int
	err        error
}

// shouldRetry is the retry eligibility predicate, evaluated per failed
// attempt. The method rule is absolute: unsafe methods are never retried,
// regardless of status code or exception, to prevent duplicate side effects
// such as sending the same email twice. For safe methods, transport errors,
// per-attempt timeouts, 408 and any 5xx are retryable; 429 is retryable only
// while client-side rate limiting is enabled, since only then is a brief
// wait plausible to help.
func shouldRetry(method string, out outcome, rateLimiterEnabled bool) bool {
	if !safeMethod(method) {
		return false
	}
	if out.err != nil {
		return true
	}
	switch {
	case out.statusCode == http.StatusRequestTimeout:
		return true
	case out.statusCode >= 500:
		return true
	case out.statusCode == http.StatusTooManyRequests:
		return rateLimiterEnabled
	}
	return false
}

// breakerFailure reports whether the outcome counts toward the circuit
// breaker's failure ratio. This is deliberately distinct from retry
// eligibility: a POST that is never retried still affects circuit health.
// 429 is a quota signal, not a backend-health signal, and is excluded.
func breakerFailure(out outcome) bool {
	if out.err != nil {
		return true
	}
	switch out.statusCode {
	case http.StatusRequestTimeout,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryDelay returns the backoff delay before retry attempt n (1-based):
// base * 2^(n-1), randomized by retryJitter.
func retryDelay(base time.Duration, attempt int) time.Duration {
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	jitter := delay * retryJitter
	delay = delay - jitter + rand.Float64()*2*jitter
	return time.Duration(delay)
}

// waitRetry sleeps for the backoff delay of the given retry attempt,
// returning early with the context error if the caller cancels or the total
// deadline expires.
func waitRetry(ctx context.Context, base time.Duration, attempt int) error {
	timer := time.NewTimer(retryDelay(base, attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
