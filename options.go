package postwave

import (
	"log/slog"
	"net/http"

	"github.com/postwave/client-go/internal/resilience"
)

// ResilienceConfig holds the tunable parameters of the resilience pipeline.
// The five layers and their order are fixed; only these values change.
type ResilienceConfig = resilience.Config

// DefaultResilienceConfig returns the documented default pipeline
// parameters: 3 retries from a 1s base delay, 30s per attempt within a 60s
// total ceiling, a 10% failure threshold over a 30s window with a minimum
// throughput of 10 and a 30s break, and rate limiting with 20 permits and a
// queue of 50.
func DefaultResilienceConfig() ResilienceConfig {
	return resilience.DefaultConfig()
}

// ResilienceConfigFromEnv builds a ResilienceConfig from POSTWAVE_*
// environment variables, falling back to the defaults for unset variables.
func ResilienceConfigFromEnv() (ResilienceConfig, error) {
	return resilience.FromEnv()
}

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	resilience ResilienceConfig
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*clientConfig)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client. Its timeout should be left at
// zero; attempt deadlines are owned by the resilience pipeline.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithResilienceConfig replaces the whole pipeline configuration. Invalid
// parameters surface as a *ConfigError from New.
func WithResilienceConfig(cfg ResilienceConfig) Option {
	return func(c *clientConfig) {
		c.resilience = cfg
	}
}

// WithMaxRetries overrides the retry budget for retry-eligible methods.
// Send and webhook mutations are POSTs and are never retried regardless of
// this value.
func WithMaxRetries(count int) Option {
	return func(c *clientConfig) {
		c.resilience.MaxRetries = count
	}
}

// WithoutRateLimiting disables the client-side concurrency limiter. This
// also stops 429 responses from being considered retryable.
func WithoutRateLimiting() Option {
	return func(c *clientConfig) {
		c.resilience.RateLimiterEnabled = false
	}
}

// WithLogger sets the logger used for circuit-breaker transitions and rate
// limiter rejections. By default the client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// listWebhooksConfig holds pagination for ListWebhooks.
type listWebhooksConfig struct {
	limit  int
	offset int
}

// ListWebhooksOption configures a ListWebhooks call.
type ListWebhooksOption func(*listWebhooksConfig)

// WithListLimit caps the number of webhooks returned.
func WithListLimit(limit int) ListWebhooksOption {
	return func(c *listWebhooksConfig) {
		c.limit = limit
	}
}

// WithListOffset skips the first offset webhooks.
func WithListOffset(offset int) ListWebhooksOption {
	return func(c *listWebhooksConfig) {
		c.offset = offset
	}
}
