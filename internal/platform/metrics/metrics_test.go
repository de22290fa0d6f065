package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOperations(t *testing.T, reg prometheus.Registerer) *Operations {
	t.Helper()

	m, err := NewOperations(reg)
	require.NoError(t, err)
	require.NotNil(t, m)

	return m
}

func TestNewOperations_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newOperations(t, reg)
	second := newOperations(t, reg)

	first.Observe("customers", "list", OutcomeSuccess, time.Millisecond)

	assert.Same(t, first.Total, second.Total)
	assert.InDelta(t, 1, testutil.ToFloat64(second.Total.WithLabelValues("customers", "list", OutcomeSuccess)), 0)
}

func TestNewOperations_ConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paddle_client_operations_total",
		Help: "conflicting",
	}))

	_, err := NewOperations(reg)

	require.Error(t, err)
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newOperations(t, reg)

	m.Observe("customers", "get", OutcomeSuccess, 20*time.Millisecond)
	m.Observe("customers", "get", OutcomeSuccess, 30*time.Millisecond)
	m.Observe("customers", "get", OutcomeAPI, 10*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(m.Total.WithLabelValues("customers", "get", OutcomeSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Total.WithLabelValues("customers", "get", OutcomeAPI)), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestStarted(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newOperations(t, reg)

	done1 := m.Started("prices")
	done2 := m.Started("prices")
	assert.InDelta(t, 2, testutil.ToFloat64(m.InFlight.WithLabelValues("prices")), 0)

	done1()
	done2()
	assert.InDelta(t, 0, testutil.ToFloat64(m.InFlight.WithLabelValues("prices")), 0)
}

func TestNilOperations(t *testing.T) {
	var m *Operations

	assert.NotPanics(t, func() {
		m.Observe("customers", "list", OutcomeSuccess, time.Second)
		m.Started("customers")()
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newOperations(t, reg)
	m.Observe("products", "list", OutcomeSuccess, time.Millisecond)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body),
		`paddle_client_operations_total{operation="list",outcome="success",resource="products"} 1`)
}
