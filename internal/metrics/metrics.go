// Package metrics provides centralized Prometheus metrics registry for the pricing engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prop_edge"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	QuotesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_ingested_total",
		Help:      "Total number of market quotes ingested by source",
	}, []string{"source"})
	QuotesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_evaluated_total",
		Help:      "Total number of market quotes passed to the board",
	})
	RecordsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_skipped_total",
		Help:      "Total number of records skipped by stage and reason",
	}, []string{"stage", "reason"})
	BoardRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "board_runs_total",
		Help:      "Total number of board runs",
	})
	BoardPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "board_entries_published_total",
		Help:      "Total number of board entries published to the stream",
	})
)

// Gauge metrics
var (
	BoardEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "board_entries",
		Help:      "Number of entries on the latest board",
	})
	PositiveEdges = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "board_positive_edges",
		Help:      "Number of entries with a positive edge on the latest board",
	})
)

// Histogram metrics
var (
	BoardDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "board_duration_seconds",
		Help:      "Duration of board builds in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	EdgePct = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "board_edge_pct",
		Help:      "Distribution of edge percentage points on the board",
		Buckets:   []float64{-10, -5, -2, -1, 0, 1, 2, 5, 10},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(QuotesIngestedTotal)
		registry.MustRegister(QuotesEvaluatedTotal)
		registry.MustRegister(RecordsSkippedTotal)
		registry.MustRegister(BoardRunsTotal)
		registry.MustRegister(BoardPublishedTotal)

		registry.MustRegister(BoardEntries)
		registry.MustRegister(PositiveEdges)

		registry.MustRegister(BoardDuration)
		registry.MustRegister(EdgePct)

		// Register grading metrics
		registry.MustRegister(PicksGradedTotal)
		registry.MustRegister(OpenPicks)
		registry.MustRegister(HitRate)
		registry.MustRegister(CLVMean)
		registry.MustRegister(StopLossTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordQuotesIngested records quotes fetched from a source.
func RecordQuotesIngested(source string, count int) {
	QuotesIngestedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSkipped records a record dropped from a batch.
func RecordSkipped(stage, reason string) {
	RecordsSkippedTotal.WithLabelValues(stage, reason).Inc()
}

// RecordSkippedCount records several records dropped for the same reason.
func RecordSkippedCount(stage, reason string, count int) {
	if count > 0 {
		RecordsSkippedTotal.WithLabelValues(stage, reason).Add(float64(count))
	}
}

// RecordBoardRun records the summary of a board build.
func RecordBoardRun(quotes, entries, positive int, durationSeconds float64) {
	BoardRunsTotal.Inc()
	QuotesEvaluatedTotal.Add(float64(quotes))
	BoardEntries.Set(float64(entries))
	PositiveEdges.Set(float64(positive))
	BoardDuration.Observe(durationSeconds)
}

// ObserveEdge records one board entry's edge.
func ObserveEdge(edgePct float64) {
	EdgePct.Observe(edgePct)
}

// RecordPublished records entries pushed to the board stream.
func RecordPublished(count int) {
	BoardPublishedTotal.Add(float64(count))
}
