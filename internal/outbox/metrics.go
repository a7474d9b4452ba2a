package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Published prometheus.Counter
	Failures  prometheus.Counter
	Backlog   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_outbox_relay_failures_total",
			Help: "Relay ticks that failed to publish a batch",
		}),
		Backlog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "onboard_outbox_backlog",
			Help: "Outbox entries not yet published",
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	if m != nil {
		m.Published.Add(float64(n))
	}
}

func (m *Metrics) IncFailures() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) SetBacklog(n int) {
	if m != nil {
		m.Backlog.Set(float64(n))
	}
}
