package postwave

import (
	"sync"

	"github.com/postwave/client-go/internal/api"
	"github.com/postwave/client-go/internal/resilience"
)

// Client is the Postwave API client. One client owns one resilience
// pipeline: all requests issued through it share the same circuit breaker
// and rate limiter, and the client is safe for concurrent use.
type Client struct {
	apiClient *api.Client

	mu     sync.RWMutex
	closed bool
}

// New creates a Postwave client with the given API key. The resilience
// configuration is validated here, before any call is made; invalid
// parameters return a *ConfigError.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &clientConfig{
		resilience: resilience.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var pipelineOpts []resilience.Option
	if cfg.logger != nil {
		pipelineOpts = append(pipelineOpts, resilience.WithLogger(cfg.logger))
	}
	pipeline, err := resilience.New(cfg.resilience, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	apiOpts := []api.Option{api.WithPipeline(pipeline)}
	if cfg.baseURL != "" {
		apiOpts = append(apiOpts, api.WithBaseURL(cfg.baseURL))
	}

	apiClient, err := api.New(apiKey, apiOpts...)
	if err != nil {
		return nil, wrapError(err)
	}

	if cfg.httpClient != nil {
		apiClient.SetHTTPClient(cfg.httpClient)
	}

	return &Client{apiClient: apiClient}, nil
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// Close marks the client closed. Subsequent operations return
// ErrClientClosed; in-flight calls are left to finish under their own
// deadlines.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
