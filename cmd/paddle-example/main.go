// Package main runs the Paddle client against a sandbox account or an
// in-process fake and prints what each call returns.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	paddle "github.com/ccxlv/paddle-go"
	"github.com/ccxlv/paddle-go/internal/paddletest"
	"github.com/ccxlv/paddle-go/internal/platform/config"
	"github.com/ccxlv/paddle-go/internal/platform/logging"
	"github.com/ccxlv/paddle-go/internal/platform/metrics"
	"github.com/ccxlv/paddle-go/internal/platform/telemetry"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the example program.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"
)

const metricsShutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("paddle-example", flag.ContinueOnError)
	useFake := fs.Bool("fake", false, "run against an in-process fake Paddle API")
	profile := fs.String("profile", envOr("PADDLE_PROFILE", "local"), "config profile under configs/")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load(*profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// 2. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			Level:      cfg.Log.File.Level,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	// 3. Optionally stand up the fake API
	if *useFake {
		fake := paddletest.New(paddletest.WithLogger(logger))
		defer fake.Close()

		cfg.Paddle.APIKey = fake.APIKey()
		cfg.Paddle.BaseURL = fake.URL()
		seedFake(fake)

		logger.Info("using fake paddle api", slog.String("url", fake.URL()))
	}

	// 4. Validate (fail fast)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Info("starting paddle example",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.Paddle.Environment),
	)

	// 5. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.Paddle.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 6. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	if cfg.Metrics.Enabled {
		stopMetrics := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer stopMetrics()
	}

	// 7. Build the client
	client, err := paddle.New(cfg.Paddle.APIKey, clientOptions(cfg, logger, reg)...)
	if err != nil {
		return fmt.Errorf("creating paddle client: %w", err)
	}
	defer client.Close()

	// 8. Run the flows
	return runExamples(ctx, client, newPrinter(out), logger)
}

// clientOptions maps configuration onto client options.
func clientOptions(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) []paddle.Option {
	opts := []paddle.Option{
		paddle.WithEnvironment(paddle.Environment(cfg.Paddle.Environment)),
		paddle.WithLogger(logger),
		paddle.WithMetrics(reg),
		paddle.WithUserAgent("paddle-example/" + Version),
		paddle.WithHTTPClient(&http.Client{
			Timeout: cfg.Client.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        cfg.Client.Transport.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.Client.Transport.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.Client.Transport.IdleConnTimeout,
			},
		}),
		paddle.WithRetry(paddle.RetryPolicy{
			MaxAttempts:     cfg.Client.Retry.MaxAttempts,
			InitialInterval: cfg.Client.Retry.InitialInterval,
			MaxInterval:     cfg.Client.Retry.MaxInterval,
			Multiplier:      cfg.Client.Retry.Multiplier,
			Jitter:          cfg.Client.Retry.JitterFactor,
		}),
		paddle.WithCircuitBreaker(paddle.CircuitBreakerPolicy{
			MaxFailures:   cfg.Client.CircuitBreaker.MaxFailures,
			OpenTimeout:   cfg.Client.CircuitBreaker.Timeout,
			HalfOpenLimit: cfg.Client.CircuitBreaker.HalfOpenLimit,
		}),
	}

	if cfg.Paddle.BaseURL != "" {
		opts = append(opts, paddle.WithBaseURL(cfg.Paddle.BaseURL))
	}

	return opts
}

// serveMetrics exposes reg on addr until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		}
	}
}

// printer writes labelled JSON documents.
type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (p *printer) print(label string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", label, err)
	}

	_, err = fmt.Fprintf(p.out, "== %s\n%s\n", label, body)

	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
