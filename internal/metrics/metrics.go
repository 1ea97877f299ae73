// Package metrics holds the Prometheus collectors exported by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/swisscoin/internal/calculator"
)

const namespace = "swisscoin"

// Metrics groups the server's collectors. A nil *Metrics records nothing.
type Metrics struct {
	RPCRequests        *prometheus.CounterVec
	RPCDuration        *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC calls by procedure and result code.",
		}, []string{"procedure", "code"}),
		RPCDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected splits and settlements by validation kind.",
		}, []string{"kind"}),
	}
}

// ObserveRPC records one finished call.
func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCRequests.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(seconds)
}

// ObserveValidation counts err if it is a calculator validation error.
func (m *Metrics) ObserveValidation(err error) {
	if m == nil {
		return
	}
	if kind, ok := calculator.KindOf(err); ok {
		m.ValidationFailures.WithLabelValues(string(kind)).Inc()
	}
}
