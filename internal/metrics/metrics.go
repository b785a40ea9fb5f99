package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricExternalCallsTotal    = "resume_ranker_external_calls_total"
	MetricExternalCallDuration  = "resume_ranker_external_call_duration_seconds"
	MetricExternalRetriesTotal  = "resume_ranker_external_retries_total"
	MetricDocumentsRankedTotal  = "resume_ranker_documents_ranked_total"
	MetricDocumentFailuresTotal = "resume_ranker_document_failures_total"
	MetricCompositeScore        = "resume_ranker_composite_score"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Metrics holds the collectors of one ranking process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	calls        *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	retries      *prometheus.CounterVec
	ranked       prometheus.Counter
	failures     *prometheus.CounterVec
	composite    prometheus.Histogram
}

// New creates the collectors and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricExternalCallsTotal,
				Help: "External embedding and judgment calls by provider, operation and outcome",
			},
			[]string{"provider", "op", "outcome"},
		),
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricExternalCallDuration,
				Help:    "Duration of single external call attempts in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "op"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricExternalRetriesTotal,
				Help: "Retried external calls by provider and operation",
			},
			[]string{"provider", "op"},
		),
		ranked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricDocumentsRankedTotal,
			Help: "Documents that received a composite score",
		}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricDocumentFailuresTotal,
				Help: "Documents excluded from a ranking by failing stage",
			},
			[]string{"stage"},
		),
		composite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricCompositeScore,
			Help:    "Distribution of composite scores",
			Buckets: prometheus.LinearBuckets(10, 10, 9),
		}),
	}

	m.registry.MustRegister(m.calls, m.callDuration, m.retries, m.ranked, m.failures, m.composite)

	return m
}

// Registry exposes the private registry, mostly for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveCall(provider, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(provider, op, outcome).Inc()
	m.callDuration.WithLabelValues(provider, op).Observe(d.Seconds())
}

func (m *Metrics) IncRetry(provider, op string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(provider, op).Inc()
}

func (m *Metrics) ObserveRanked(composite float64) {
	if m == nil {
		return
	}
	m.ranked.Inc()
	m.composite.Observe(composite)
}

func (m *Metrics) IncFailure(stage string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(stage).Inc()
}

// WriteTextfile writes the current values in the text exposition format, for
// the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
