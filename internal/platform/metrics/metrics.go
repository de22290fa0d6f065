// Package metrics records Paddle client operations as Prometheus metrics.
//
// A nil *Operations is valid and records nothing, so callers never need to
// check whether metrics were enabled.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "paddle_client"

// Outcome labels.
const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation_error"
	OutcomeDeserialization = "deserialization_error"
	OutcomeAPI             = "api_error"
	OutcomeUnavailable     = "unavailable"
	OutcomeNotImplemented  = "not_implemented"
)

// Operations holds the per-operation collectors.
type Operations struct {
	Total    *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	InFlight *prometheus.GaugeVec
}

// NewOperations creates the collectors and registers them with reg.
// Collectors already registered by an earlier client are reused.
func NewOperations(reg prometheus.Registerer) (*Operations, error) {
	m := &Operations{
		Total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of Paddle API operations by outcome",
			},
			[]string{"resource", "operation", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Paddle API operation duration in seconds, including validation and decoding",
				Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"resource", "operation"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "async_in_flight",
				Help:      "Number of async operations that have not completed",
			},
			[]string{"resource"},
		),
	}

	var err error
	if m.Total, err = register(reg, m.Total); err != nil {
		return nil, err
	}
	if m.Duration, err = register(reg, m.Duration); err != nil {
		return nil, err
	}
	if m.InFlight, err = register(reg, m.InFlight); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return c, fmt.Errorf("registering paddle client metrics: %w", err)
}

// Observe records one finished operation.
func (m *Operations) Observe(resource, operation, outcome string, d time.Duration) {
	if m == nil {
		return
	}

	m.Total.WithLabelValues(resource, operation, outcome).Inc()
	m.Duration.WithLabelValues(resource, operation).Observe(d.Seconds())
}

// Started marks an async operation as in flight. The returned func marks it done.
func (m *Operations) Started(resource string) func() {
	if m == nil {
		return func() {}
	}

	g := m.InFlight.WithLabelValues(resource)
	g.Inc()

	return g.Dec
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
