package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

type Metrics struct {
	WizardsStarted   prometheus.Counter
	WizardsAbandoned prometheus.Counter
	StepsAdvanced    *prometheus.CounterVec
	StepsRejected    *prometheus.CounterVec
	Submissions      *prometheus.CounterVec
	SubmitDuration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WizardsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "artemiz_registration_wizards_started_total",
			Help: "Registration wizards started",
		}),
		WizardsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Name: "artemiz_registration_wizards_abandoned_total",
			Help: "Registration wizards discarded before submission",
		}),
		StepsAdvanced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artemiz_registration_steps_advanced_total",
			Help: "Steps that passed validation, by the step left behind",
		}, []string{"step"}),
		StepsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artemiz_registration_steps_rejected_total",
			Help: "Step validations that failed, by step",
		}, []string{"step"}),
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "artemiz_registration_submissions_total",
			Help: "Submit attempts by outcome",
		}, []string{"outcome"}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "artemiz_registration_submit_duration_seconds",
			Help:    "Time spent in the submission boundary call",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) IncrementWizardsStarted() {
	m.WizardsStarted.Inc()
}

func (m *Metrics) IncrementWizardsAbandoned() {
	m.WizardsAbandoned.Inc()
}

func (m *Metrics) IncrementStepAdvanced(step int) {
	m.StepsAdvanced.WithLabelValues(strconv.Itoa(step)).Inc()
}

func (m *Metrics) IncrementStepRejected(step int) {
	m.StepsRejected.WithLabelValues(strconv.Itoa(step)).Inc()
}

func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSubmitDuration(d time.Duration) {
	m.SubmitDuration.Observe(d.Seconds())
}
