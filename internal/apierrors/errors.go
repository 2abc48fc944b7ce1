// Package apierrors provides shared error types for the Postwave client.
package apierrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrMissingAPIKey is returned when no API key is provided.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client has been closed")

	// ErrUnauthorized is returned when the API key is invalid or expired.
	ErrUnauthorized = errors.New("invalid or expired API key")

	// ErrWebhookNotFound is returned when no webhook subscription exists for a URL.
	ErrWebhookNotFound = errors.New("webhook not found")

	// ErrMessageNotFound is returned when a referenced message or job is not found.
	ErrMessageNotFound = errors.New("message not found")

	// ErrRateLimited is returned when the API reports the account quota is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ResourceType indicates which type of resource an error relates to.
type ResourceType string

const (
	// ResourceUnknown indicates the resource type is not specified.
	ResourceUnknown ResourceType = ""
	// ResourceWebhook indicates the error relates to a webhook subscription.
	ResourceWebhook ResourceType = "webhook"
	// ResourceMessage indicates the error relates to an email message or send job.
	ResourceMessage ResourceType = "message"
)

// APIError represents a non-2xx HTTP response from the Postwave API.
type APIError struct {
	StatusCode   int
	Code         string // machine-readable error code from the response body
	Message      string
	RequestID    string
	ResourceType ResourceType
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		if e.Message != "" {
			return fmt.Sprintf("API error %d: %s (request_id: %s)", e.StatusCode, e.Message, e.RequestID)
		}
		return fmt.Sprintf("API error %d (request_id: %s)", e.StatusCode, e.RequestID)
	}
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	switch e.StatusCode {
	case 401, 403:
		return target == ErrUnauthorized
	case 404:
		switch e.ResourceType {
		case ResourceWebhook:
			return target == ErrWebhookNotFound
		case ResourceMessage:
			return target == ErrMessageNotFound
		default:
			return target == ErrWebhookNotFound || target == ErrMessageNotFound
		}
	case 429:
		return target == ErrRateLimited
	}
	return false
}

// WithResourceType returns a copy of the error with the resource type set.
// If the error is not an *APIError, it is returned unchanged.
func WithResourceType(err error, rt ResourceType) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			StatusCode:   apiErr.StatusCode,
			Code:         apiErr.Code,
			Message:      apiErr.Message,
			RequestID:    apiErr.RequestID,
			ResourceType: rt,
		}
	}
	return err
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
// decoded into the expected envelope. Outbound operation responses are
// strict; only inbound webhook callback parsing is tolerant.
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
