package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for claim onboarding.
type Metrics struct {
	ClaimsSubmitted  *prometheus.CounterVec
	ClaimsCompleted  *prometheus.CounterVec
	PersonsCreated   prometheus.Counter
	ReviewTasks      *prometheus.CounterVec
	ReplayedRequests prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClaimsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_claims_submitted_total",
			Help: "Claims submitted, by match outcome",
		}, []string{"outcome"}),
		ClaimsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_claims_completed_total",
			Help: "Claims completed, by resolution",
		}, []string{"resolution"}), // resolution: "matched", "new_record", "further_checks_approved"
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_persons_created_total",
			Help: "Person records created by claim resolution",
		}),
		ReviewTasks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_review_tasks_created_total",
			Help: "Manual review tasks created, by kind",
		}, []string{"kind"}),
		ReplayedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "onboard_claims_replayed_total",
			Help: "Submissions answered from a previously stored claim",
		}),
	}
}

func (m *Metrics) IncSubmitted(outcome string) {
	if m != nil {
		m.ClaimsSubmitted.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncCompleted(resolution string) {
	if m != nil {
		m.ClaimsCompleted.WithLabelValues(resolution).Inc()
	}
}

func (m *Metrics) IncPersonsCreated() {
	if m != nil {
		m.PersonsCreated.Inc()
	}
}

func (m *Metrics) IncReviewTask(kind string) {
	if m != nil {
		m.ReviewTasks.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncReplayed() {
	if m != nil {
		m.ReplayedRequests.Inc()
	}
}
