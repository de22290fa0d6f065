package paddle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ccxlv/paddle-go/internal/adapters/clients"
	"github.com/ccxlv/paddle-go/internal/platform/config"
	"github.com/ccxlv/paddle-go/internal/platform/logging"
	"github.com/ccxlv/paddle-go/internal/platform/metrics"
)

// Version is the library version reported in the User-Agent header.
const Version = "0.3.0"

// apiVersion is the Paddle-Version header value.
const apiVersion = "1"

// Client is a blocking Paddle Billing API client. It is safe for concurrent use.
type Client struct {
	customers     *CustomersClient
	prices        *PricesClient
	products      *ProductsClient
	subscriptions *SubscriptionsClient

	transport *clients.Client
}

// New creates a client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	c, err := newCaller(apiKey, opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		customers:     &CustomersClient{c: c},
		prices:        &PricesClient{c: c},
		products:      &ProductsClient{c: c},
		subscriptions: &SubscriptionsClient{c: c},
		transport:     c.transport,
	}, nil
}

// Customers returns the customers resource.
func (c *Client) Customers() *CustomersClient { return c.customers }

// Prices returns the prices resource.
func (c *Client) Prices() *PricesClient { return c.prices }

// Products returns the products resource.
func (c *Client) Products() *ProductsClient { return c.products }

// Subscriptions returns the subscriptions resource.
func (c *Client) Subscriptions() *SubscriptionsClient { return c.subscriptions }

// Close releases idle connections. It is safe to call more than once.
func (c *Client) Close() error {
	if c.transport != nil {
		c.transport.Close()
	}

	return nil
}

// caller runs operations for every resource client.
type caller struct {
	requester Requester
	logger    *slog.Logger
	metrics   *metrics.Operations
	transport *clients.Client
}

func newCaller(apiKey string, opts []Option) (*caller, error) {
	if err := validateID("api_key", apiKey); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.environment != Sandbox && o.environment != Production {
		return nil, &ValidationError{
			Param:   "environment",
			Rule:    "oneof=sandbox production",
			Message: "must be one of: sandbox production",
			Value:   string(o.environment),
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &caller{requester: o.requester, logger: logger}

	if o.registerer != nil {
		ops, err := metrics.NewOperations(o.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = ops
	}

	if c.requester != nil {
		return c, nil
	}

	baseURL := o.baseURL
	if baseURL == "" {
		baseURL = o.environment.BaseURL()
	}

	transport, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "paddle",
		Timeout:     o.timeout,
		Retry:       retryConfig(o.retry),
		Circuit:     circuitConfig(o.breaker),
		Headers: http.Header{
			"Accept":         {"application/json"},
			"Paddle-Version": {apiVersion},
			"User-Agent":     {o.userAgent},
		},
		AuthFunc: func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+apiKey)
		},
		Logger:     logger,
		HTTPClient: o.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("paddle: creating transport: %w", err)
	}

	c.transport = transport
	c.requester = &transportRequester{client: transport}

	return c, nil
}

func retryConfig(p RetryPolicy) config.RetryConfig {
	return config.RetryConfig{
		MaxAttempts:     max(p.MaxAttempts, 1),
		InitialInterval: orDefault(p.InitialInterval, defaultRetryInitialInterval),
		MaxInterval:     orDefault(p.MaxInterval, defaultRetryMaxInterval),
		Multiplier:      orDefault(p.Multiplier, defaultRetryMultiplier),
		JitterFactor:    min(p.Jitter, 1),
	}
}

func circuitConfig(p CircuitBreakerPolicy) config.CircuitBreakerConfig {
	if p.MaxFailures <= 0 {
		return config.CircuitBreakerConfig{}
	}

	return config.CircuitBreakerConfig{
		MaxFailures:   p.MaxFailures,
		Timeout:       orDefault(p.OpenTimeout, defaultBreakerOpenTimeout),
		HalfOpenLimit: orDefault(p.HalfOpenLimit, defaultBreakerHalfOpenLimit),
	}
}

func orDefault[T int | float64 | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}

	return fallback
}

// operation names a resource method for logs and metrics.
type operation struct {
	resource string
	name     string
}

// invoke runs one operation: prepare validates and builds the request, the
// requester performs it and decode maps the body. Exactly one outcome is
// recorded per call.
func invoke[R any](
	ctx context.Context,
	c *caller,
	op operation,
	prepare func() (*Request, error),
	decode func(resource string, body []byte) (R, error),
) (R, error) {
	start := time.Now()
	ctx = logging.WithOperation(logging.WithContext(ctx, logging.FromContextOr(ctx, c.logger)), op.resource, op.name)

	result, err := run(ctx, c, op, prepare, decode)

	c.observe(ctx, op, start, err)

	return result, err
}

func run[R any](
	ctx context.Context,
	c *caller,
	op operation,
	prepare func() (*Request, error),
	decode func(resource string, body []byte) (R, error),
) (R, error) {
	var zero R

	req, err := prepare()
	if err != nil {
		return zero, err
	}

	body, err := c.requester.Do(ctx, req)
	if err != nil {
		return zero, err
	}

	return decode(op.resource, body)
}

func (c *caller) observe(ctx context.Context, op operation, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := outcomeOf(err)

	c.metrics.Observe(op.resource, op.name, outcome, elapsed)

	logger := logging.FromContext(ctx)
	if err != nil {
		logger.DebugContext(ctx, "paddle operation failed",
			slog.String("outcome", outcome),
			slog.Duration("duration", elapsed),
			slog.Any("error", err),
		)
		return
	}

	logger.DebugContext(ctx, "paddle operation completed", slog.Duration("duration", elapsed))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrValidation):
		return metrics.OutcomeValidation
	case errors.Is(err, ErrDeserialization):
		return metrics.OutcomeDeserialization
	case errors.Is(err, ErrAPI):
		return metrics.OutcomeAPI
	case errors.Is(err, ErrNotImplemented):
		return metrics.OutcomeNotImplemented
	default:
		return metrics.OutcomeUnavailable
	}
}

// resourcePath joins a collection path with an escaped identifier and
// optional sub-resource segments.
func resourcePath(collection, id string, sub ...string) string {
	parts := append([]string{collection, url.PathEscape(id)}, sub...)
	return strings.Join(parts, "/")
}
