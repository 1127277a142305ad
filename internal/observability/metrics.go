package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the research discovery
// service, organized by subsystem: pipeline runs, keyword searches, source
// requests and discovered papers. All collectors are registered via
// promauto with the default registry.
type Metrics struct {
	// PipelinesStarted counts discovery pipeline runs initiated.
	PipelinesStarted prometheus.Counter

	// PipelineDuration observes end-to-end pipeline duration in seconds.
	PipelineDuration prometheus.Histogram

	// KeywordsPerQuery observes the distribution of keyword counts per query.
	KeywordsPerQuery prometheus.Histogram

	// KeywordSearches counts per-keyword discovery runs, labeled by outcome
	// ("ok" when at least one work was discovered, "empty" otherwise).
	KeywordSearches *prometheus.CounterVec

	// SourceRequests counts logical requests to external sources, labeled
	// by source name and outcome classification.
	SourceRequests *prometheus.CounterVec

	// PapersDiscovered counts papers assembled before deduplication.
	PapersDiscovered prometheus.Counter

	// PapersDuplicate counts papers dropped by cross-keyword deduplication.
	PapersDuplicate prometheus.Counter
}

// NewMetrics creates and registers all metrics under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PipelinesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipelines_started_total",
			Help:      "Total number of discovery pipeline runs initiated.",
		}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end discovery pipeline duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		KeywordsPerQuery: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keywords_per_query",
			Help:      "Distribution of keyword counts per query.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		KeywordSearches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_searches_total",
			Help:      "Per-keyword discovery runs by outcome.",
		}, []string{"outcome"}),
		SourceRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Logical requests to external sources by outcome.",
		}, []string{"source", "outcome"}),
		PapersDiscovered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_discovered_total",
			Help:      "Papers assembled before deduplication.",
		}),
		PapersDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "papers_duplicate_total",
			Help:      "Papers dropped by cross-keyword deduplication.",
		}),
	}
}

// RecordPipelineStarted increments the pipeline run counter.
func (m *Metrics) RecordPipelineStarted() {
	m.PipelinesStarted.Inc()
}

// RecordPipelineCompleted observes the duration of a finished pipeline run.
func (m *Metrics) RecordPipelineCompleted(durationSeconds float64) {
	m.PipelineDuration.Observe(durationSeconds)
}

// RecordKeywords observes the keyword count for one query.
func (m *Metrics) RecordKeywords(count int) {
	m.KeywordsPerQuery.Observe(float64(count))
}

// RecordKeywordSearch counts one per-keyword discovery run.
func (m *Metrics) RecordKeywordSearch(outcome string) {
	m.KeywordSearches.WithLabelValues(outcome).Inc()
}

// RecordSourceRequest counts one logical request to an external source.
// Implements the sources.RequestRecorder interface.
func (m *Metrics) RecordSourceRequest(source, outcome string) {
	m.SourceRequests.WithLabelValues(source, outcome).Inc()
}

// RecordPapersDiscovered counts papers assembled before deduplication.
func (m *Metrics) RecordPapersDiscovered(count int) {
	m.PapersDiscovered.Add(float64(count))
}

// RecordPapersDuplicate counts papers dropped by deduplication.
func (m *Metrics) RecordPapersDuplicate(count int) {
	m.PapersDuplicate.Add(float64(count))
}
