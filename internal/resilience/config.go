package resilience

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the numeric parameters of the resilience pipeline. The five
// layers and their order are fixed; only these values are tunable. A Config
// is built once at client construction and shared, immutably, by every
// request issued through that client.
type Config struct {
	// MaxRetries is the maximum number of retry attempts after the initial
	// call, for retry-eligible methods only.
	MaxRetries int `env:"POSTWAVE_MAX_RETRIES" envDefault:"3"`
	// RetryBaseDelay is the delay before the first retry; subsequent delays
	// grow exponentially with jitter.
	RetryBaseDelay time.Duration `env:"POSTWAVE_RETRY_BASE_DELAY" envDefault:"1s"`
	// AttemptTimeout bounds a single network round trip.
	AttemptTimeout time.Duration `env:"POSTWAVE_ATTEMPT_TIMEOUT" envDefault:"30s"`
	// TotalTimeout is an absolute ceiling over the whole call including all
	// retries and retry delays.
	TotalTimeout time.Duration `env:"POSTWAVE_TOTAL_TIMEOUT" envDefault:"60s"`

	// BreakerFailureThreshold is the failure ratio in (0,1] at which the
	// circuit opens, once minimum throughput is reached.
	BreakerFailureThreshold float64 `env:"POSTWAVE_BREAKER_FAILURE_THRESHOLD" envDefault:"0.1"`
	// BreakerSamplingWindow is the rolling window over which throughput and
	// failures are counted.
	BreakerSamplingWindow time.Duration `env:"POSTWAVE_BREAKER_SAMPLING_WINDOW" envDefault:"30s"`
	// BreakerMinimumThroughput is the minimum number of calls in the window
	// before the failure ratio is considered.
	BreakerMinimumThroughput int `env:"POSTWAVE_BREAKER_MIN_THROUGHPUT" envDefault:"10"`
	// BreakerBreakDuration is how long the circuit stays open before a
	// half-open trial call is allowed.
	BreakerBreakDuration time.Duration `env:"POSTWAVE_BREAKER_BREAK_DURATION" envDefault:"30s"`

	// RateLimiterEnabled gates the outermost concurrency limiter.
	RateLimiterEnabled bool `env:"POSTWAVE_RATE_LIMITER_ENABLED" envDefault:"true"`
	// RateLimiterPermitLimit is the number of concurrent in-flight requests.
	RateLimiterPermitLimit int `env:"POSTWAVE_RATE_LIMITER_PERMIT_LIMIT" envDefault:"20"`
	// RateLimiterQueueLimit is how many additional callers may wait, oldest
	// first, for a permit. Callers beyond the queue fail immediately.
	RateLimiterQueueLimit int `env:"POSTWAVE_RATE_LIMITER_QUEUE_LIMIT" envDefault:"50"`
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxRetries:               3,
		RetryBaseDelay:           time.Second,
		AttemptTimeout:           30 * time.Second,
		TotalTimeout:             60 * time.Second,
		BreakerFailureThreshold:  0.1,
		BreakerSamplingWindow:    30 * time.Second,
		BreakerMinimumThroughput: 10,
		BreakerBreakDuration:     30 * time.Second,
		RateLimiterEnabled:       true,
		RateLimiterPermitLimit:   20,
		RateLimiterQueueLimit:    50,
	}
}

// FromEnv builds a Config from POSTWAVE_* environment variables, falling
// back to the documented defaults for unset variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, &ConfigError{Field: "environment", Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigError reports an invalid pipeline parameter. It is detected at
// construction time, before any call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid resilience config: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration invariants: durations must be positive
// while the owning feature is active, the failure threshold must lie in
// (0,1], and counts must not be negative.
func (c Config) Validate() error {
	if c.MaxRetries < 0 {
		return &ConfigError{Field: "MaxRetries", Reason: "must not be negative"}
	}
	if c.MaxRetries > 0 && c.RetryBaseDelay <= 0 {
		return &ConfigError{Field: "RetryBaseDelay", Reason: "must be positive when retries are enabled"}
	}
	if c.AttemptTimeout <= 0 {
		return &ConfigError{Field: "AttemptTimeout", Reason: "must be positive"}
	}
	if c.TotalTimeout <= 0 {
		return &ConfigError{Field: "TotalTimeout", Reason: "must be positive"}
	}
	if c.BreakerFailureThreshold <= 0 || c.BreakerFailureThreshold > 1 {
		return &ConfigError{Field: "BreakerFailureThreshold", Reason: "must be in (0,1]"}
	}
	if c.BreakerSamplingWindow <= 0 {
		return &ConfigError{Field: "BreakerSamplingWindow", Reason: "must be positive"}
	}
	if c.BreakerMinimumThroughput < 1 {
		return &ConfigError{Field: "BreakerMinimumThroughput", Reason: "must be at least 1"}
	}
	if c.BreakerBreakDuration <= 0 {
		return &ConfigError{Field: "BreakerBreakDuration", Reason: "must be positive"}
	}
	if c.RateLimiterEnabled {
		if c.RateLimiterPermitLimit < 1 {
			return &ConfigError{Field: "RateLimiterPermitLimit", Reason: "must be at least 1 when rate limiting is enabled"}
		}
		if c.RateLimiterQueueLimit < 0 {
			return &ConfigError{Field: "RateLimiterQueueLimit", Reason: "must not be negative"}
		}
	}
	return nil
}
