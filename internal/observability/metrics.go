package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rain_dataset"

// Metrics holds the Prometheus counters, histograms, and gauges for the dataset build.
type Metrics struct {
	RowsRead        prometheus.Counter
	DaysEmitted     prometheus.Counter
	DaysDropped     prometheus.Counter
	TrailingRows    prometheus.Gauge
	ClassDays       *prometheus.GaugeVec // labels: class={rain,no_rain}
	BalancedDays    prometheus.Gauge
	DegenerateCols  prometheus.Gauge
	PipelineRunning prometheus.Gauge

	BuildDuration prometheus.Histogram

	// Sink metrics.
	SamplesPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Observation rows read from the source table.",
		}),
		DaysEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_emitted_total",
			Help:      "Complete day samples produced by windowing.",
		}),
		DaysDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "days_dropped_total",
			Help:      "Day buckets discarded for having the wrong number of rows.",
		}),
		TrailingRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trailing_rows",
			Help:      "Rows of the unfinished day left open at the end of the last build.",
		}),
		ClassDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "class_days",
			Help:      "Days per rainfall class before balancing.",
		}, []string{"class"}),
		BalancedDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balanced_days",
			Help:      "Days in the class-balanced dataset.",
		}),
		DegenerateCols: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "degenerate_features",
			Help:      "Selected features with zero variance in the normalization training rows.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a build is in progress, 0 otherwise.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete load-window-balance-publish run.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		SamplesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_published_total",
			Help:      "Balanced day samples written to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed sink write attempts.",
		}),
	}
}

// NewMetrics creates and registers all dataset metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsRead,
		m.DaysEmitted,
		m.DaysDropped,
		m.TrailingRows,
		m.ClassDays,
		m.BalancedDays,
		m.DegenerateCols,
		m.PipelineRunning,
		m.BuildDuration,
		m.SamplesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
