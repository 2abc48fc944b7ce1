package postwave

import (
	"errors"
	"fmt"

	"github.com/postwave/client-go/internal/apierrors"
	"github.com/postwave/client-go/internal/resilience"
)

// Sentinel errors for errors.Is() checks. Pipeline-level failures
// (capacity, circuit open, total timeout) are kept distinct from API-level
// failures so callers can back off and retry later for the former and
// surface the latter.
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = apierrors.ErrMissingAPIKey

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = apierrors.ErrClientClosed

	// ErrUnauthorized is returned when the API key is invalid or expired.
	ErrUnauthorized = apierrors.ErrUnauthorized

	// ErrWebhookNotFound is returned when no webhook subscription exists for a URL.
	ErrWebhookNotFound = apierrors.ErrWebhookNotFound

	// ErrMessageNotFound is returned when a referenced message or job is not found.
	ErrMessageNotFound = apierrors.ErrMessageNotFound

	// ErrRateLimited is returned when the API reports the account quota is
	// exceeded (HTTP 429).
	ErrRateLimited = apierrors.ErrRateLimited

	// ErrCapacityExceeded is returned when the client-side rate limiter's
	// permit pool and wait queue are both full. The call never left the
	// client.
	ErrCapacityExceeded = resilience.ErrCapacityExceeded

	// ErrCircuitOpen is returned while the circuit breaker is open; the
	// call never reached the transport.
	ErrCircuitOpen = resilience.ErrCircuitOpen

	// ErrInvalidMessage is returned when an email message fails client-side
	// validation before being sent.
	ErrInvalidMessage = errors.New("invalid email message")

	// ErrInvalidWebhookConfig is returned when a webhook subscription fails
	// client-side validation.
	ErrInvalidWebhookConfig = errors.New("invalid webhook configuration")
)

// ConfigError reports invalid resilience pipeline parameters, detected at
// client construction before any call is made.
type ConfigError = resilience.ConfigError

// TotalTimeoutError reports that the deadline covering an entire call,
// including all retries, was reached.
type TotalTimeoutError = resilience.TotalTimeoutError

// APIError represents a non-2xx HTTP response from the Postwave API.
type APIError struct {
	StatusCode int
	Code       string // machine-readable error code from the response body
	Message    string
	RequestID  string

	internal *apierrors.APIError
}

func (e *APIError) Error() string {
	if e.internal != nil {
		return e.internal.Error()
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	if e.internal != nil {
		return e.internal.Is(target)
	}
	return false
}

// NetworkError represents a transport-level failure: connection refused,
// DNS failure, or a per-attempt timeout that exhausted the retry budget.
type NetworkError struct {
	Err error
	URL string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a 2xx response whose body could not be
// decoded into the expected shape. It is terminal and never silently
// swallowed; only inbound webhook callback parsing is tolerant.
type MalformedResponseError struct {
	Err       error
	RequestID string
}

func (e *MalformedResponseError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("malformed API response (request_id: %s): %v", e.RequestID, e.Err)
	}
	return fmt.Sprintf("malformed API response: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// wrapError converts internal errors to their public counterparts so that
// errors.Is and errors.As work against this package's types. Pipeline
// errors are shared sentinels and pass through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode: apiErr.StatusCode,
			Code:       apiErr.Code,
			Message:    apiErr.Message,
			RequestID:  apiErr.RequestID,
			internal:   apiErr,
		}
	}

	var netErr *apierrors.NetworkError
	if errors.As(err, &netErr) {
		return &NetworkError{
			Err: netErr.Err,
			URL: netErr.URL,
		}
	}

	var malformedErr *apierrors.MalformedResponseError
	if errors.As(err, &malformedErr) {
		return &MalformedResponseError{
			Err:       malformedErr.Err,
			RequestID: malformedErr.RequestID,
		}
	}

	return err
}
