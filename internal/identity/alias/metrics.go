package alias

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	CacheLookups *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_alias_cache_lookups_total",
			Help: "Alias synonym lookups served by the cache, by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

func (m *Metrics) IncCacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}
