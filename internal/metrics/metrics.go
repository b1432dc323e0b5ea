// Package metrics holds the Prometheus collectors for normalization and reporting.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for a pipeline run.
type Metrics struct {
	RowsProcessed    prometheus.Counter
	RowsRejected     prometheus.Counter
	DataIssues       *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	QueryFailures    *prometheus.CounterVec
	NormalizeSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// New creates the metrics and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrclean_rows_processed_total",
			Help: "Total number of raw employee rows read by the normalizer",
		}),
		RowsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hrclean_rows_rejected_total",
			Help: "Total number of rows rejected by the normalizer",
		}),
		DataIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrclean_data_issues_total",
			Help: "Data-quality issues found during normalization",
		}, []string{"column", "kind"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hrclean_query_duration_seconds",
			Help:    "Duration of report queries",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"query"}),
		QueryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hrclean_query_failures_total",
			Help: "Report queries that returned an error",
		}, []string{"query"}),
		NormalizeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hrclean_normalize_duration_seconds",
			Help:    "Duration of the normalization phase",
			Buckets: prometheus.DefBuckets,
		}),
		registry: reg,
	}

	reg.MustRegister(
		m.RowsProcessed,
		m.RowsRejected,
		m.DataIssues,
		m.QueryDuration,
		m.QueryFailures,
		m.NormalizeSeconds,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveIssue counts one data-quality issue.
func (m *Metrics) ObserveIssue(column, kind string) {
	m.DataIssues.WithLabelValues(column, kind).Inc()
}

// ObserveQuery records the duration and outcome of a report query.
func (m *Metrics) ObserveQuery(query string, d time.Duration, err error) {
	m.QueryDuration.WithLabelValues(query).Observe(d.Seconds())

	if err != nil {
		m.QueryFailures.WithLabelValues(query).Inc()
	}
}

// WriteTextfile dumps the current metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
