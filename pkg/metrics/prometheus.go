package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors of the meal-change workflow.
//
// All methods are nil-safe so tests and tools can run without a registry.
type Metrics struct {
	RequestsCreated        prometheus.Counter
	Settlements            *prometheus.CounterVec
	SettlementDuration     *prometheus.HistogramVec
	Cancellations          *prometheus.CounterVec
	Expirations            prometheus.Counter
	ReconciliationRequired *prometheus.CounterVec
	ErrorsCount            *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg under namespace.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meal_change_requests_created_total",
			Help:      "The total number of meal change requests created",
		}),
		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlement attempts by rail and outcome",
		}, []string{"rail", "outcome"}),
		SettlementDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "settlement_duration_seconds",
			Help:      "Time taken to settle a price adjustment",
			Buckets:   prometheus.DefBuckets,
		}, []string{"rail"}),
		Cancellations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Cancelled meal change requests by refund outcome",
		}, []string{"refund"}),
		Expirations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expirations_total",
			Help:      "Pending requests moved to expired by the sweeper",
		}),
		ReconciliationRequired: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_required_total",
			Help:      "Situations that need an operator to reconcile money movement",
		}, []string{"reason"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

func (m *Metrics) RequestCreated() {
	if m == nil {
		return
	}
	m.RequestsCreated.Inc()
}

func (m *Metrics) Settled(rail, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(rail, outcome).Inc()
	m.SettlementDuration.WithLabelValues(rail).Observe(seconds)
}

func (m *Metrics) Cancelled(refund string) {
	if m == nil {
		return
	}
	m.Cancellations.WithLabelValues(refund).Inc()
}

func (m *Metrics) Expired(n int) {
	if m == nil {
		return
	}
	m.Expirations.Add(float64(n))
}

func (m *Metrics) NeedsReconciliation(reason string) {
	if m == nil {
		return
	}
	m.ReconciliationRequired.WithLabelValues(reason).Inc()
}

func (m *Metrics) Failed(operation string) {
	if m == nil {
		return
	}
	m.ErrorsCount.WithLabelValues(operation).Inc()
}
