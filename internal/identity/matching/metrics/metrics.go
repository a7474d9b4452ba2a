package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the matching engine.
type Metrics struct {
	// Registry lookup latencies by source
	LookupLatency *prometheus.HistogramVec

	// Match outcomes by outcome
	MatchOutcome *prometheus.CounterVec

	// Candidates considered per claim
	Candidates prometheus.Histogram

	// Claims for which more than one record satisfied a definite rule
	DefiniteConflicts prometheus.Counter

	// Overall match latency
	MatchLatency prometheus.Histogram
}

// New registers the matching metrics with reg. Tests pass a fresh
// prometheus.NewRegistry(); the server passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboard_match_lookup_duration_seconds",
			Help:    "Duration of candidate lookups by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "email", "national_insurance_number", "demographics"

		MatchOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_match_outcomes_total",
			Help: "Total match outcomes",
		}, []string{"outcome"}),

		Candidates: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_match_candidates",
			Help:    "Number of candidate records evaluated per claim",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 25, 50},
		}),

		DefiniteConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_match_definite_conflicts_total",
			Help: "Claims for which more than one record satisfied a definite rule",
		}),

		MatchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_match_duration_seconds",
			Help:    "Duration of a full match including candidate lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveLookupLatency records the duration of one registry lookup.
func (m *Metrics) ObserveLookupLatency(source string, d time.Duration) {
	if m != nil {
		m.LookupLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a match outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.MatchOutcome.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveCandidates(n int) {
	if m != nil {
		m.Candidates.Observe(float64(n))
	}
}

func (m *Metrics) IncrementDefiniteConflict() {
	if m != nil {
		m.DefiniteConflicts.Inc()
	}
}

// ObserveMatchLatency records the total match duration.
func (m *Metrics) ObserveMatchLatency(d time.Duration) {
	if m != nil {
		m.MatchLatency.Observe(d.Seconds())
	}
}
