// Package metrics exposes Prometheus instrumentation for the engine:
// backtest job lifecycle counters, live pass counters, and gauges for
// running strategies and open positions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the engine's Prometheus metrics.
type Collector struct {
	JobsSubmitted  prometheus.Counter
	JobsCompleted  prometheus.Counter
	JobsFailed     prometheus.Counter
	PassesTotal    *prometheus.CounterVec
	TradesRecorded prometheus.Counter
	StrategiesLive prometheus.Gauge
	PassDuration   prometheus.Histogram
}

// NewCollector creates the metric set and registers it with the given
// registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		JobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowquant",
			Name:      "backtest_jobs_submitted_total",
			Help:      "Backtest jobs accepted for execution.",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowquant",
			Name:      "backtest_jobs_completed_total",
			Help:      "Backtest jobs that ran to completion.",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowquant",
			Name:      "backtest_jobs_failed_total",
			Help:      "Backtest jobs that ended in failure or cancellation.",
		}),
		PassesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowquant",
			Name:      "evaluation_passes_total",
			Help:      "Evaluation passes by final signal.",
		}, []string{"signal"}),
		TradesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "flowquant",
			Name:      "trades_recorded_total",
			Help:      "Closed trades appended to the trade log.",
		}),
		StrategiesLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowquant",
			Name:      "strategies_running",
			Help:      "Live strategies currently polling.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowquant",
			Name:      "evaluation_pass_seconds",
			Help:      "Wall time of one full evaluation pass.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.JobsSubmitted,
		c.JobsCompleted,
		c.JobsFailed,
		c.PassesTotal,
		c.TradesRecorded,
		c.StrategiesLive,
		c.PassDuration,
	)

	return c
}

// NewNopCollector creates a collector bound to a throwaway registry, for
// callers that do not export metrics.
func NewNopCollector() *Collector {
	return NewCollector(prometheus.NewRegistry())
}
