package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the cortexd metric instruments.
type Metrics struct {
	registry *prometheus.Registry

	decisionsTotal   *prometheus.CounterVec
	decisionDuration prometheus.Histogram
	brainFailures    *prometheus.CounterVec
	validationsTotal *prometheus.CounterVec
	updatesApplied   prometheus.Counter
	updatesRejected  prometheus.Counter
	feedbackTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "decisions_total",
			Help:      "Aggregated decisions by execution strategy.",
		}, []string{"strategy"}),
		decisionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cortexd",
			Name:      "decision_duration_seconds",
			Help:      "Wall-clock time spent assembling a decision.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		brainFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "brain_failures_total",
			Help:      "Brain analysis failures by brain name.",
		}, []string{"brain"}),
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "qa_validations_total",
			Help:      "QA validation outcomes by quality level.",
		}, []string{"quality"}),
		updatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "learning_updates_applied_total",
			Help:      "Validated learning updates applied to adaptive state.",
		}),
		updatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "learning_updates_rejected_total",
			Help:      "Learning updates discarded by the QA gate.",
		}),
		feedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cortexd",
			Name:      "feedback_total",
			Help:      "Execution feedback records by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.decisionsTotal,
		m.decisionDuration,
		m.brainFailures,
		m.validationsTotal,
		m.updatesApplied,
		m.updatesRejected,
		m.feedbackTotal,
	)
	return m
}

// Registry returns the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDecision records one completed decision.
func (m *Metrics) ObserveDecision(strategy string, duration time.Duration) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(strategy).Inc()
	m.decisionDuration.Observe(duration.Seconds())
}

// ObserveBrainFailure records a failed brain analysis.
func (m *Metrics) ObserveBrainFailure(brainName string) {
	if m == nil {
		return
	}
	m.brainFailures.WithLabelValues(brainName).Inc()
}

// ObserveValidation records a QA validation outcome.
func (m *Metrics) ObserveValidation(quality string) {
	if m == nil {
		return
	}
	m.validationsTotal.WithLabelValues(quality).Inc()
}

// ObserveApplied records learning updates applied vs rejected.
func (m *Metrics) ObserveApplied(applied, rejected int) {
	if m == nil {
		return
	}
	m.updatesApplied.Add(float64(applied))
	m.updatesRejected.Add(float64(rejected))
}

// ObserveFeedback records an accepted feedback submission.
func (m *Metrics) ObserveFeedback(outcome string) {
	if m == nil {
		return
	}
	m.feedbackTotal.WithLabelValues(outcome).Inc()
}
