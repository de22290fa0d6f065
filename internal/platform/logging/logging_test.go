package logging_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccxlv/paddle-go/internal/adapters/clients"
	"github.com/ccxlv/paddle-go/internal/platform/logging"
)

const apiKey = "pdl_sdbx_apikey_01hx7xk8cmq9n5y3f0m2r6r4gz_AbCdEf"

// entries parses JSON log lines.
func entries(t *testing.T, data []byte) []map[string]any {
	t.Helper()

	var out []map[string]any
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), scanner.Text())
		out = append(out, entry)
	}
	require.NoError(t, scanner.Err())

	return out
}

func TestContext_OperationTags(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	fallback := slog.New(slog.DiscardHandler)

	assert.Same(t, fallback, logging.FromContextOr(context.Background(), fallback))

	ctx := logging.WithContext(context.Background(), logger)
	assert.Same(t, logger, logging.FromContextOr(ctx, fallback))

	ctx = logging.WithRequestID(ctx, "req_01")
	ctx = logging.WithOperation(ctx, "subscriptions", "pause")
	logging.FromContext(ctx).InfoContext(ctx, "calling paddle")

	got := entries(t, buf.Bytes())
	require.Len(t, got, 1)
	assert.Equal(t, "req_01", got[0]["request_id"])
	assert.Equal(t, "subscriptions", got[0]["resource"])
	assert.Equal(t, "pause", got[0]["operation"])
}

// TestClientRequestLog_RedactsCredentials sends a real request through
// clients.Client with trace logging on. The wire log carries the request
// headers, so the bearer token must be masked in every console format while
// the request itself still authenticates. The pretty console clamps trace to
// debug and so only shows the completion line.
func TestClientRequestLog_RedactsCredentials(t *testing.T) {
	auth := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth <- r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	for _, tt := range []struct {
		format string
		wire   bool
	}{
		{format: "json", wire: true},
		{format: "text", wire: true},
		{format: "pretty", wire: false},
	} {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewWithWriter(&logging.Config{Level: "trace", Format: tt.format}, &buf)

			client, err := clients.New(&clients.Config{
				BaseURL:     srv.URL,
				ServiceName: "paddle",
				AuthFunc: func(r *http.Request) {
					r.Header.Set("Authorization", "Bearer "+apiKey)
				},
			})
			require.NoError(t, err)
			defer client.Close()

			ctx := logging.WithContext(context.Background(), logger)
			resp, err := client.Send(ctx, http.MethodGet, "/customers", url.Values{"per_page": {"1"}}, nil)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, "Bearer "+apiKey, <-auth, "redaction must not touch the outgoing request")

			out := buf.String()
			if tt.wire {
				assert.Contains(t, out, "sending request")
				assert.Contains(t, out, "per_page=1")
				assert.Contains(t, out, "Authorization")
			}
			assert.Contains(t, out, "request completed")
			assert.NotContains(t, out, apiKey)
		})
	}
}

func TestNewWithWriter_RedactsPaddleSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{Level: "info", Format: "json"}, &buf)

	logger.Info("configured",
		slog.String("value", apiKey),
		slog.String("auth", "Bearer "+apiKey),
		slog.String("customer_auth_token", "pca_01hv8tsz7jgtc5h02w0bvrmqzw"),
		slog.String("customer_id", "ctm_01"),
	)

	out := buf.String()
	assert.NotContains(t, out, apiKey)
	assert.NotContains(t, out, "pca_01hv8tsz7jgtc5h02w0bvrmqzw")
	assert.Contains(t, out, "ctm_01")
}

// TestNewWithWriter_PrettyConsoleWithFileMirror uses the layout of the example
// binary: a pretty console at info and a JSON file that also keeps trace logs.
func TestNewWithWriter_PrettyConsoleWithFileMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "paddle.log")

	var console bytes.Buffer
	logger := logging.NewWithWriter(&logging.Config{
		Level:   "info",
		Format:  "pretty",
		Service: "paddle-example",
		Version: "1.2.3",
		File: logging.FileConfig{
			Enabled:   true,
			Path:      path,
			Level:     "trace",
			MaxSizeMB: 1,
		},
	}, &console)

	ctx := context.Background()
	logger = logger.With(slog.String("resource", "customers"))

	logger.Log(ctx, logging.LevelTrace, "sending request", slog.String("authorization", "Bearer "+apiKey))
	logger.InfoContext(ctx, "customer fetched", slog.String("customer_id", "ctm_01"), slog.String("api_key", apiKey))

	assert.Contains(t, console.String(), "customer fetched")
	assert.NotContains(t, console.String(), "sending request", "trace stays out of the console")
	assert.NotContains(t, console.String(), apiKey)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), apiKey)

	got := entries(t, data)
	require.Len(t, got, 2)
	assert.Equal(t, "sending request", got[0]["msg"])
	assert.Equal(t, "customer fetched", got[1]["msg"])
	assert.Equal(t, "ctm_01", got[1]["customer_id"])
	assert.Equal(t, "customers", got[1]["resource"])
	assert.Equal(t, "paddle-example", got[1]["service_name"])
	assert.Equal(t, "1.2.3", got[1]["service_version"])
}

func TestNewWithWriter_FileFollowsConsoleLevelByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paddle.log")

	logger := logging.NewWithWriter(&logging.Config{
		Level:  "warn",
		Format: "text",
		File:   logging.FileConfig{Enabled: true, Path: path},
	}, &bytes.Buffer{})

	logger.Info("retrying request")
	logger.Warn("circuit breaker state changed", slog.String("to", "open"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got := entries(t, data)
	require.Len(t, got, 1)
	assert.Equal(t, "circuit breaker state changed", got[0]["msg"])
	assert.Equal(t, "open", got[0]["to"])
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		record     slog.Level
		written    bool
	}{
		{name: "trace keeps wire logs", configured: "trace", record: logging.LevelTrace, written: true},
		{name: "debug drops wire logs", configured: "debug", record: logging.LevelTrace, written: false},
		{name: "case insensitive", configured: "DEBUG", record: slog.LevelDebug, written: true},
		{name: "warning alias", configured: "warning", record: slog.LevelInfo, written: false},
		{name: "empty is info", configured: "", record: slog.LevelInfo, written: true},
		{name: "unknown is info", configured: "verbose", record: slog.LevelDebug, written: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.NewWithWriter(&logging.Config{Level: tt.configured, Format: "json"}, &buf)

			logger.Log(context.Background(), tt.record, "wire dump")

			assert.Equal(t, tt.written, buf.Len() > 0)
		})
	}
}
