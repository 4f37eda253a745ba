package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for both the page side and the
// log store. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Signals          *prometheus.CounterVec
	DeliveryFailures prometheus.Counter
	UsageStored      *prometheus.CounterVec
	Alerts           *prometheus.CounterVec
	UsagePruned      prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Signals: f.NewCounterVec(prometheus.CounterOpts{
			Name: "permwatch_signals_total",
			Help: "Raw permission signals evaluated by the debouncer, by outcome",
		}, []string{"kind", "action", "result"}),
		DeliveryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "permwatch_delivery_failures_total",
			Help: "Usage events dropped by the transport",
		}),
		UsageStored: f.NewCounterVec(prometheus.CounterOpts{
			Name: "permwatch_usage_stored_total",
			Help: "Usage events appended to the log store",
		}, []string{"kind"}),
		Alerts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "permwatch_alerts_total",
			Help: "User-facing alerts raised by the notifier",
		}, []string{"kind"}),
		UsagePruned: f.NewCounter(prometheus.CounterOpts{
			Name: "permwatch_usage_pruned_total",
			Help: "Usage records deleted by the retention pruner",
		}),
	}
}

func (m *Metrics) ObserveSignal(kind, action string, accepted bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	m.Signals.WithLabelValues(kind, action, result).Inc()
}

func (m *Metrics) IncDeliveryFailures() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

func (m *Metrics) IncUsageStored(kind string) {
	if m == nil {
		return
	}
	m.UsageStored.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncAlerts(kind string) {
	if m == nil {
		return
	}
	m.Alerts.WithLabelValues(kind).Inc()
}

func (m *Metrics) AddUsagePruned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.UsagePruned.Add(float64(n))
}
