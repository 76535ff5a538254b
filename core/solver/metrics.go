package solver

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	solveDuration *prometheus.HistogramVec
	solvesTotal   *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parcel_solve_duration_seconds",
			Help:    "Duration of single-parcel backward induction solves",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"crop"},
	)
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parcel_solves_total",
			Help: "Number of single-parcel solves performed",
		},
		[]string{"crop"},
	)
	return dur, total
}

func init() {
	solveDuration, solvesTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers solver metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(solveDuration, solvesTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	solveDuration, solvesTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
