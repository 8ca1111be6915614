package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the aggregation pipeline's Prometheus instruments.
// Each instrument uses its own registry so tests can create as many
// Metrics values as they like without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	ReportsProcessed *prometheus.CounterVec
	ReportFailures   *prometheus.CounterVec
	Verdicts         *prometheus.CounterVec
	BaselineWrites   *prometheus.CounterVec
	RunDuration      prometheus.Histogram
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ReportsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aasbench_reports_processed_total",
			Help: "Reports ingested, by tier (sdk/server)",
		},
		[]string{"tier"},
	)

	m.ReportFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aasbench_report_failures_total",
			Help: "Per-implementation failures, by failure state",
		},
		[]string{"state"},
	)

	m.Verdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aasbench_regression_verdicts_total",
			Help: "Regression comparisons, by verdict",
		},
		[]string{"verdict"},
	)

	m.BaselineWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aasbench_baseline_writes_total",
			Help: "Baseline write attempts, by outcome (ok/conflict/error)",
		},
		[]string{"outcome"},
	)

	m.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aasbench_run_duration_seconds",
			Help:    "Wall time of one aggregation run",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.registry.MustRegister(
		m.ReportsProcessed,
		m.ReportFailures,
		m.Verdicts,
		m.BaselineWrites,
		m.RunDuration,
	)
	return m
}

// Handler returns the exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr. It blocks, so callers run it in a
// goroutine for the lifetime of the run.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, mux)
}
