package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// scoring service.
type Metrics struct {
	EventsIngested  *prometheus.CounterVec // labels: source
	EventsUnmapped  prometheus.Counter
	IngestErrors    prometheus.Counter
	PipelineRunning prometheus.Gauge

	// Batch ingest metrics.
	BatchSize prometheus.Histogram

	// Scoring metrics.
	ScoreComputeDuration prometheus.Histogram
	FocalAnalyzeDuration prometheus.Histogram
	ConvergenceAlerts    prometheus.Counter
	LearningMode         prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cii",
			Name:      "events_ingested_total",
			Help:      "Total events ingested by source feed.",
		}, []string{"source"}),
		EventsUnmapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cii",
			Name:      "events_unmapped_total",
			Help:      "Total events dropped because no country attribution succeeded.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cii",
			Name:      "ingest_errors_total",
			Help:      "Total malformed ingest envelopes skipped.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cii",
			Name:      "pipeline_running",
			Help:      "1 when the ingest loop is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cii",
			Name:      "batch_size",
			Help:      "Number of envelopes per batch extracted from the ingest topic.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		ScoreComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cii",
			Name:      "score_compute_duration_seconds",
			Help:      "Duration of a full CII snapshot computation.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		FocalAnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cii",
			Name:      "focal_analyze_duration_seconds",
			Help:      "Duration of a focal-point analysis pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ConvergenceAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cii",
			Name:      "convergence_alerts_total",
			Help:      "Total geographic convergence alerts emitted.",
		}),
		LearningMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cii",
			Name:      "learning_mode",
			Help:      "1 while the engine is inside its bootstrap window.",
		}),
	}

	prometheus.MustRegister(
		m.EventsIngested,
		m.EventsUnmapped,
		m.IngestErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.ScoreComputeDuration,
		m.FocalAnalyzeDuration,
		m.ConvergenceAlerts,
		m.LearningMode,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		EventsIngested:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "cii", Name: "events_ingested_total"}, []string{"source"}),
		EventsUnmapped:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cii", Name: "events_unmapped_total"}),
		IngestErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cii", Name: "ingest_errors_total"}),
		PipelineRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cii", Name: "pipeline_running"}),
		BatchSize:            prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cii", Name: "batch_size"}),
		ScoreComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cii", Name: "score_compute_duration_seconds"}),
		FocalAnalyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "cii", Name: "focal_analyze_duration_seconds"}),
		ConvergenceAlerts:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "cii", Name: "convergence_alerts_total"}),
		LearningMode:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "cii", Name: "learning_mode"}),
	}
}

// StartScoreTimer times one CII snapshot computation.
func (m *Metrics) StartScoreTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.ScoreComputeDuration)
}

// StartFocalTimer times one focal-point analysis pass.
func (m *Metrics) StartFocalTimer() *prometheus.Timer {
	return prometheus.NewTimer(m.FocalAnalyzeDuration)
}
