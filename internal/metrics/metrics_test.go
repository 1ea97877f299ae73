package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/swisscoin/internal/calculator"
)

func TestObserveValidation(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveValidation(calculator.ErrReconciliationFailure)
	m.ObserveValidation(calculator.ErrReconciliationFailure)
	m.ObserveValidation(errors.New("not a validation error"))
	m.ObserveValidation(nil)

	if got := testutil.ToFloat64(m.ValidationFailures.WithLabelValues("reconciliation_failure")); got != 2 {
		t.Errorf("reconciliation failures = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.ValidationFailures); got != 1 {
		t.Errorf("got %d label sets, want 1", got)
	}
}

func TestObserveRPC(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC("/swisscoin.v1.SplitService/CalculateSplit", "ok", 0.01)
	m.ObserveRPC("/swisscoin.v1.SplitService/CalculateSplit", "invalid_argument", 0.02)

	if got := testutil.ToFloat64(m.RPCRequests.WithLabelValues("/swisscoin.v1.SplitService/CalculateSplit", "ok")); got != 1 {
		t.Errorf("ok calls = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.RPCDuration); got != 1 {
		t.Errorf("got %d histograms, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRPC("p", "ok", 1)
	m.ObserveValidation(calculator.ErrInvalidInput)
}
