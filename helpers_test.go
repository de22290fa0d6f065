package paddle

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccxlv/paddle-go/internal/paddletest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient starts a fake Paddle API and a client pointed at it.
func newTestClient(t *testing.T, opts ...Option) (*Client, *paddletest.Server) {
	t.Helper()

	srv := paddletest.Start(t)

	base := []Option{WithBaseURL(srv.URL()), WithLogger(discardLogger())}
	client, err := New(srv.APIKey(), append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, srv
}

// fakeRequester answers every call with the same body or error and
// remembers what it was asked.
type fakeRequester struct {
	mu       sync.Mutex
	requests []*Request
	bodies   [][]byte
	err      error
}

func (f *fakeRequester) Do(_ context.Context, req *Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.bodies) == 0 {
		return []byte(`{}`), nil
	}

	body := f.bodies[0]
	if len(f.bodies) > 1 {
		f.bodies = f.bodies[1:]
	}

	return body, nil
}

func (f *fakeRequester) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.requests)
}

func newFakeClient(t *testing.T, f *fakeRequester, opts ...Option) *Client {
	t.Helper()

	client, err := New("pdl_test_key", append([]Option{WithRequester(f), WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)

	return client
}

func ptr[T any](v T) *T { return &v }
