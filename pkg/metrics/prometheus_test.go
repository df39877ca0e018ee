package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RequestCreated()
	m.Settled("wallet", "paid", 0.1)
	m.Cancelled("none")
	m.Expired(3)
	m.NeedsReconciliation("gateway_write_failed")
	m.Failed("settle")
}

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("mealchange", reg)

	m.RequestCreated()
	m.RequestCreated()
	m.Settled("wallet", "paid", 0.2)
	m.Expired(2)

	if got := testutil.ToFloat64(m.RequestsCreated); got != 2 {
		t.Fatalf("expected 2 created, got %v", got)
	}
	if got := testutil.ToFloat64(m.Settlements.WithLabelValues("wallet", "paid")); got != 1 {
		t.Fatalf("expected 1 settlement, got %v", got)
	}
	if got := testutil.ToFloat64(m.Expirations); got != 2 {
		t.Fatalf("expected 2 expirations, got %v", got)
	}
}
