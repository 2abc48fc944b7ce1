// Package api implements the HTTP transport for the Postwave API: request
// serialization, the response envelope, authentication, and error-body
// parsing. Every exchange is routed through the resilience pipeline.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/postwave/client-go/internal/apierrors"
	"github.com/postwave/client-go/internal/resilience"
)

const defaultBaseURL = "https://api.postwave.io"

// apiKeyHeader carries the static API key on every request.
const apiKeyHeader = "X-API-Key"

// Client is the HTTP API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pipeline   *resilience.Pipeline
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithPipeline sets the resilience pipeline wrapping every call.
func WithPipeline(p *resilience.Pipeline) Option {
	return func(c *Client) {
		c.pipeline = p
	}
}

// New creates a new API client. Without WithPipeline, a pipeline with the
// default configuration is built.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	c := &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		// Attempt deadlines are owned by the pipeline's per-attempt
		// timeout, so the http.Client itself carries none.
		httpClient: &http.Client{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.pipeline == nil {
		p, err := resilience.New(resilience.DefaultConfig())
		if err != nil {
			return nil, err
		}
		c.pipeline = p
	}

	return c, nil
}

// SetHTTPClient sets a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// envelope is the fixed response wrapper used by every Postwave operation.
type envelope struct {
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

// errorEnvelope is the wrapper used for non-2xx responses.
type errorEnvelope struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Do issues a single logical API call through the resilience pipeline. The
// request body is marshaled once and the reader is rebuilt per attempt. On
// success the envelope's data field is decoded into result when non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path

	resp, err := c.pipeline.Do(ctx, method, func(attemptCtx context.Context) (*http.Response, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(attemptCtx, method, url, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set(apiKeyHeader, c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return classifyPipelineError(ctx, err, url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apierrors.NetworkError{Err: err, URL: url}
	}

	if resp.StatusCode >= 400 {
		return parseErrorResponse(resp.StatusCode, raw)
	}

	if result == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &apierrors.MalformedResponseError{Err: err}
	}
	if len(env.Data) == 0 {
		return &apierrors.MalformedResponseError{
			Err:       errors.New("response envelope has no data field"),
			RequestID: env.RequestID,
		}
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return &apierrors.MalformedResponseError{Err: err, RequestID: env.RequestID}
	}
	return nil
}

// classifyPipelineError keeps pipeline-level errors intact so callers can
// handle them separately from API-level errors, and wraps everything else
// as a transport failure. Caller-initiated termination, whether an explicit
// cancel or the caller's own deadline, passes through untouched; a
// context.DeadlineExceeded from a per-attempt timeout that exhausted the
// retry budget does not match ctx.Err() and is wrapped like any other
// transport failure.
func classifyPipelineError(ctx context.Context, err error, url string) error {
	var totalTimeout *resilience.TotalTimeoutError
	switch {
	case errors.Is(err, resilience.ErrCapacityExceeded),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.As(err, &totalTimeout),
		errors.Is(err, context.Canceled):
		return err
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return err
	}
	return &apierrors.NetworkError{Err: err, URL: url}
}

// parseErrorResponse maps a non-2xx response to an *apierrors.APIError,
// extracting the error envelope when the body carries one.
func parseErrorResponse(statusCode int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Error.Message != "" || env.Error.Code != "") {
		return &apierrors.APIError{
			StatusCode: statusCode,
			Code:       env.Error.Code,
			Message:    env.Error.Message,
			RequestID:  env.RequestID,
		}
	}
	return &apierrors.APIError{
		StatusCode: statusCode,
		Message:    string(raw),
	}
}
