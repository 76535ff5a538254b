package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	planRuns        *prometheus.CounterVec
	planDuration    prometheus.Histogram
	iterationsTotal prometheus.Counter
	dualityGapGauge prometheus.Gauge
	reductionTotal  prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Counter, prometheus.Gauge, prometheus.Counter) {
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_runs_total",
			Help: "Number of planning runs completed",
		},
		[]string{"converged"},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_duration_seconds",
			Help:    "Wall time of whole planning runs",
			Buckets: prometheus.DefBuckets,
		},
	)
	iters := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_iterations_total",
			Help: "Number of dual-ascent iterations performed",
		},
	)
	gap := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "plan_duality_gap_mm",
			Help: "Duality gap of the most recent iteration in mm",
		},
	)
	red := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_capacity_reduction_mm_total",
			Help: "Depth trimmed by the feasibility pass in mm",
		},
	)
	return runs, dur, iters, gap, red
}

func init() {
	planRuns, planDuration, iterationsTotal, dualityGapGauge, reductionTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(planRuns, planDuration, iterationsTotal, dualityGapGauge, reductionTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	planRuns, planDuration, iterationsTotal, dualityGapGauge, reductionTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
