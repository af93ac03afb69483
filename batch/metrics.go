package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments batch runs. All collectors are registered on the
// registry passed to NewMetrics so tests can use isolated registries.
type Metrics struct {
	runsTotal     prometheus.Counter
	daysComputed  prometheus.Counter
	daysWithError prometheus.Counter
	runDuration   prometheus.Histogram
	workersActive prometheus.Gauge
}

// NewMetrics registers the batch collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Number of completed batch runs.",
		}),
		daysComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "batch",
			Name:      "days_computed_total",
			Help:      "Employee-days accounted across all runs.",
		}),
		daysWithError: f.NewCounter(prometheus.CounterOpts{
			Namespace: "attendance",
			Subsystem: "batch",
			Name:      "days_with_punch_errors_total",
			Help:      "Employee-days flagged with missing or out-of-order punches.",
		}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "attendance",
			Subsystem: "batch",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full month batch run.",
			Buckets:   prometheus.DefBuckets,
		}),
		workersActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "attendance",
			Subsystem: "batch",
			Name:      "workers",
			Help:      "Configured worker count of the current run.",
		}),
	}
}
