package ops

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for ops audit tracking.
type Metrics struct {
	Tracked         prometheus.Counter
	Sampled         prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics registers ops audit metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Tracked: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_audit_ops_tracked_total",
			Help: "Total number of operational audit events successfully tracked",
		}),
		Sampled: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_audit_ops_sampled_total",
			Help: "Total number of operational audit events dropped due to sampling",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_audit_ops_persist_failures_total",
			Help: "Total number of operational audit event persistence failures",
		}),
	}
}

func (m *Metrics) IncTracked() {
	if m == nil {
		return
	}
	m.Tracked.Inc()
}

func (m *Metrics) IncSampled() {
	if m == nil {
		return
	}
	m.Sampled.Inc()
}

func (m *Metrics) IncPersistFailures() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}
