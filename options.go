package paddle

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Default client settings.
const (
	DefaultTimeout = 30 * time.Second

	defaultRetryInitialInterval = 500 * time.Millisecond
	defaultRetryMaxInterval     = 10 * time.Second
	defaultRetryMultiplier      = 2.0
	defaultBreakerOpenTimeout   = 30 * time.Second
	defaultBreakerHalfOpenLimit = 1
)

// RetryPolicy enables transport-level retries of network failures and 5xx
// responses. Every method is retried, including creates.
type RetryPolicy struct {
	// MaxAttempts counts the first attempt; values below 2 disable retries.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// Jitter randomises each backoff by up to this fraction either way.
	// Zero uses 0.25; values above 1 are capped at 1.
	Jitter float64
}

// CircuitBreakerPolicy stops calling Paddle after consecutive failures.
type CircuitBreakerPolicy struct {
	// MaxFailures opens the breaker; zero disables it.
	MaxFailures int
	// OpenTimeout is how long calls fail fast before a trial request is let through.
	OpenTimeout time.Duration
	// HalfOpenLimit is the number of successful trial requests that close the breaker.
	HalfOpenLimit int
}

// Option configures a Client.
type Option func(*options)

type options struct {
	environment Environment
	baseURL     string
	timeout     time.Duration
	retry       RetryPolicy
	breaker     CircuitBreakerPolicy
	logger      *slog.Logger
	registerer  prometheus.Registerer
	httpClient  *http.Client
	userAgent   string
	requester   Requester
}

func defaultOptions() *options {
	return &options{
		environment: Sandbox,
		timeout:     DefaultTimeout,
		retry:       RetryPolicy{MaxAttempts: 1},
		userAgent:   "paddle-go/" + Version,
	}
}

// WithEnvironment selects sandbox or production. The default is Sandbox.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.environment = env
	}
}

// WithBaseURL overrides the environment's base URL, e.g. for a local fake.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithRetry enables retries. Zero fields take defaults.
func WithRetry(p RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithCircuitBreaker enables the circuit breaker. Zero fields other than
// MaxFailures take defaults.
func WithCircuitBreaker(p CircuitBreakerPolicy) Option {
	return func(o *options) {
		o.breaker = p
	}
}

// WithLogger sets the logger. Without it, slog.Default is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics registers per-operation Prometheus metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithHTTPClient replaces the pooled HTTP client. The client's own Timeout
// applies instead of WithTimeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithRequester bypasses the HTTP transport entirely. Intended for tests.
func WithRequester(r Requester) Option {
	return func(o *options) {
		o.requester = r
	}
}

// String returns a pointer to v, for optional parameters.
func String(v string) *string { return &v }

// Int returns a pointer to v, for optional parameters.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for optional parameters.
func Bool(v bool) *bool { return &v }
