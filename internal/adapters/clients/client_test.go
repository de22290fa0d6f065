package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccxlv/paddle-go/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "paddle",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

// closeBody is a test helper that closes the response body and fails the test on error.
func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func newTestClient(t *testing.T, cfg *Config, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.BaseURL = server.URL
	client, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNew_RequiresServiceName(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err := New(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestNew_Success(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "https://sandbox-api.paddle.com/"

	client, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox-api.paddle.com", client.baseURL)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_GeneratesRequestID(t *testing.T) {
	var received string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get(HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/customers", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	_, err = uuid.Parse(received)
	assert.NoError(t, err, "request ID should be a UUID")
}

func TestClient_RequestIDFromContext(t *testing.T) {
	var received string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		received = r.Header.Get(HeaderRequestID)
		w.WriteHeader(http.StatusOK)
	})

	ctx := WithRequestID(context.Background(), "req-from-caller")
	resp, err := client.Send(ctx, http.MethodGet, "/customers", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "req-from-caller", received)
}

func TestClient_StaticHeaders(t *testing.T) {
	var version string

	cfg := defaultConfig()
	cfg.Headers = http.Header{"Paddle-Version": []string{"1"}}

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		version = r.Header.Get("Paddle-Version")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/prices", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "1", version)
}

func TestClient_SendQuery(t *testing.T) {
	var rawQuery string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	})

	query := url.Values{"include": {"product"}, "per_page": {"50"}}
	resp, err := client.Send(context.Background(), http.MethodGet, "/prices", query, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "include=product&per_page=50", rawQuery)
}

func TestClient_RetryOnServerError(t *testing.T) {
	var attempts int32

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_RetryRewindsBody(t *testing.T) {
	var attempts int32
	var bodies []string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	body := []byte(`{"email":"test@example.com"}`)
	resp, err := client.Send(context.Background(), http.MethodPost, "/customers", nil, body)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{string(body), string(body)}, bodies)
}

func TestClient_NoRetryByDefault(t *testing.T) {
	var attempts int32

	cfg := defaultConfig()
	cfg.Retry = config.RetryConfig{}

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts int32

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestClient_RetriesExhaustedKeepsLastResponse(t *testing.T) {
	var attempts int32

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":"service_unavailable"}}`))
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "service_unavailable")
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	t.Run("single attempt", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.BaseURL = serverURL
		cfg.Retry.MaxAttempts = 1

		client, err := New(cfg)
		require.NoError(t, err)

		_, err = client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRequestFailed)
	})

	t.Run("retries exhausted", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.BaseURL = serverURL

		client, err := New(cfg)
		require.NoError(t, err)

		_, err = client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	})
}

func TestClient_CircuitBreakerIntegration(t *testing.T) {
	var calls int32

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	for range 2 {
		resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
		require.NoError(t, err)
		closeBody(t, resp)
	}
	assert.Equal(t, StateOpen, client.CircuitState())

	callsBefore := atomic.LoadInt32(&calls)

	_, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "request should be short-circuited when circuit is open")
}

func TestClient_CircuitBreakerDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit = config.CircuitBreakerConfig{}

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	for range 10 {
		resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
		require.NoError(t, err)
		closeBody(t, resp)
	}

	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_Timeout(t *testing.T) {
	cfg := defaultConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.Error(t, err)
}

func TestClient_AuthFunc(t *testing.T) {
	var receivedAuth string

	cfg := defaultConfig()
	cfg.AuthFunc = func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer test-token")
	}

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "Bearer test-token", receivedAuth)
}

func TestClient_SendJSON(t *testing.T) {
	var receivedBody, receivedContentType, receivedMethod string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodPatch, "/customers/ctm_1", nil, []byte(`{"name":"updated"}`))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.MethodPatch, receivedMethod)
	assert.Equal(t, "application/json", receivedContentType)
	assert.Equal(t, `{"name":"updated"}`, receivedBody)
}

func TestClient_GetHasNoContentType(t *testing.T) {
	var receivedContentType string

	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/customers", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Empty(t, receivedContentType)
}

func TestClient_BuildURL(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "https://api.paddle.com"

	client, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://api.paddle.com/customers", client.buildURL("/customers"))
	assert.Equal(t, "https://api.paddle.com/customers", client.buildURL("customers"))
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, defaultConfig(), func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Send(ctx, http.MethodGet, "/test", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client, err := New(defaultConfig())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		client.Close()
		client.Close()
	})
}

func TestCalculateBackoff(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.Multiplier = 2.0
	cfg.Retry.MaxInterval = 1 * time.Second

	client, err := New(cfg)
	require.NoError(t, err)

	assert.InDelta(t, 100*time.Millisecond, client.calculateBackoff(0), float64(50*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, client.calculateBackoff(1), float64(100*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, client.calculateBackoff(2), float64(200*time.Millisecond))

	assert.LessOrEqual(t, client.calculateBackoff(10), cfg.Retry.MaxInterval+cfg.Retry.MaxInterval/4)
}

func TestCalculateBackoff_JitterFactor(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.InitialInterval = 100 * time.Millisecond
	cfg.Retry.Multiplier = 2.0
	cfg.Retry.MaxInterval = time.Second
	cfg.Retry.JitterFactor = 0.01

	client, err := New(cfg)
	require.NoError(t, err)

	for range 20 {
		assert.InDelta(t, 200*time.Millisecond, client.calculateBackoff(1), float64(2*time.Millisecond))
	}
}

// testNetError is a mock net.Error for testing.
type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"net op error connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestClient_AuthFuncCalledOnRetry(t *testing.T) {
	var authCallCount int32
	var requestCount int32

	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.InitialInterval = 1 * time.Millisecond
	cfg.AuthFunc = func(r *http.Request) {
		atomic.AddInt32(&authCallCount, 1)
		r.Header.Set("Authorization", "Bearer test-token")
	}

	client := newTestClient(t, cfg, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requestCount, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp, err := client.Send(context.Background(), http.MethodGet, "/test", nil, nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	// once initially + once on retry
	assert.Equal(t, int32(2), atomic.LoadInt32(&authCallCount))
}
