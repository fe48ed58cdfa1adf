// Package metrics provides Prometheus metrics for the claim engine and its
// retrieval collaborator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "claimify"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Ingestion metrics
	ItemsProcessed *prometheus.CounterVec
	ItemErrors     prometheus.Counter

	// Lifecycle metrics
	Transitions *prometheus.CounterVec
	Records     prometheus.Gauge

	// Dispatch metrics
	Dispatches  *prometheus.CounterVec
	RateLimited prometheus.Counter
	Verdicts    *prometheus.CounterVec

	// Retrieval metrics
	RetrievalLatency *prometheus.HistogramVec
	RetrievalErrors  *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec

	// Event publish metrics
	EventPublishTotal  *prometheus.CounterVec
	EventPublishErrors *prometheus.CounterVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg. A nil reg
// creates unregistered metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// Ingestion metrics
		ItemsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_processed_total",
			Help:      "Raw claim items processed, by outcome",
		}, []string{"outcome"}),
		ItemErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_errors_total",
			Help:      "Raw claim items that failed processing",
		}),

		// Lifecycle metrics
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Claim status transitions",
		}, []string{"from", "to"}),
		Records: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Claim records held by the engine",
		}),

		// Dispatch metrics
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Fact-check dispatches, by kind and result",
		}, []string{"kind", "result"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_rate_limited_total",
			Help:      "Dispatch sweeps stopped by the per-minute limit",
		}),
		Verdicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Fact-check verdicts applied to claims",
		}, []string{"verdict"}),

		// Retrieval metrics
		RetrievalLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_latency_seconds",
			Help:      "Retrieval backend request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		RetrievalErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_errors_total",
			Help:      "Retrieval backend failures",
		}, []string{"provider", "error_type"}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Verdict cache lookups, by result",
		}, []string{"result"}),

		// Event publish metrics
		EventPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Claim lifecycle events published",
		}, []string{"topic"}),
		EventPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_errors_total",
			Help:      "Claim lifecycle event publish errors",
		}, []string{"topic"}),
	}
}

// RecordItem records one processed item. Outcome is one of created, merged,
// withdrawn, dropped or error.
func (m *Metrics) RecordItem(outcome string) {
	if m == nil {
		return
	}
	m.ItemsProcessed.WithLabelValues(outcome).Inc()
	if outcome == "error" {
		m.ItemErrors.Inc()
	}
}

// RecordTransition records a status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// SetRecords sets the number of live claim records.
func (m *Metrics) SetRecords(n int) {
	if m == nil {
		return
	}
	m.Records.Set(float64(n))
}

// RecordDispatch records a dispatch attempt.
func (m *Metrics) RecordDispatch(retry bool, err error) {
	if m == nil {
		return
	}
	kind := "initial"
	if retry {
		kind = "retry"
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Dispatches.WithLabelValues(kind, result).Inc()
}

// RecordRateLimited records a sweep cut short by the dispatch window.
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}

// RecordVerdict records a verdict applied to a claim.
func (m *Metrics) RecordVerdict(verdict string) {
	if m == nil {
		return
	}
	m.Verdicts.WithLabelValues(verdict).Inc()
}

// RecordRetrieval records one backend call.
func (m *Metrics) RecordRetrieval(provider string, err error, errorType string, latencySeconds float64) {
	if m == nil {
		return
	}
	m.RetrievalLatency.WithLabelValues(provider).Observe(latencySeconds)
	if err != nil {
		m.RetrievalErrors.WithLabelValues(provider, errorType).Inc()
	}
}

// RecordCacheLookup records a verdict cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordEventPublish records an event publish attempt.
func (m *Metrics) RecordEventPublish(topic string, err error) {
	if m == nil {
		return
	}
	m.EventPublishTotal.WithLabelValues(topic).Inc()
	if err != nil {
		m.EventPublishErrors.WithLabelValues(topic).Inc()
	}
}
