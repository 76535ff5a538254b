package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
)

// PromSink records planning outcomes in Prometheus metrics.
type PromSink struct {
	allocations *prometheus.CounterVec
	gap         prometheus.Gauge
	iterations  prometheus.Counter
	solve       *prometheus.HistogramVec
	notices     *prometheus.CounterVec
}

// NewPromSink registers planning metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	allocations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_allocations_total",
		Help: "Total number of parcel-day allocations scheduled",
	}, []string{"parcel_id", "crop", "reduced"})
	gap := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "plan_last_gap_mm",
		Help: "Duality gap of the most recent planning run, in mm",
	})
	iterations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coordinator_iterations_total",
		Help: "Total number of dual-ascent iterations across all runs",
	})
	solve := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "solve_latency_seconds",
		Help:    "Time spent solving a single parcel program",
		Buckets: prometheus.DefBuckets,
	}, []string{"crop"})
	notices := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_notices_total",
		Help: "Diagnostics emitted by planning runs, by notice code",
	}, []string{"code"})

	if err := reg.Register(allocations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			allocations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(gap); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			gap = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(iterations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			iterations = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solve); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solve = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(notices); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			notices = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{allocations: allocations, gap: gap, iterations: iterations, solve: solve, notices: notices}, nil
}

// RecordAllocations increments the allocation counter for each scheduled day.
func (s *PromSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	for _, r := range recs {
		s.allocations.WithLabelValues(r.ParcelID, r.Crop.String(), strconv.FormatBool(r.Reduced)).Inc()
	}
	return nil
}

// RecordPlanSummary publishes the run-level gauges.
func (s *PromSink) RecordPlanSummary(sum coremetrics.PlanSummary) error {
	s.gap.Set(sum.GapMM)
	return nil
}

// RecordIteration counts dual-ascent iterations.
func (s *PromSink) RecordIteration(coremetrics.IterationRecord) error {
	s.iterations.Inc()
	return nil
}

// RecordSolveLatency records the per-parcel solve histogram.
func (s *PromSink) RecordSolveLatency(recs []coremetrics.SolveLatency) error {
	for _, r := range recs {
		s.solve.WithLabelValues(r.Crop.String()).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordNotice counts diagnostics by code.
func (s *PromSink) RecordNotice(n model.Notice) error {
	s.notices.WithLabelValues(n.Code.String()).Inc()
	return nil
}
