package metrics

import (
	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
)

// MultiSink fans planning records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocations forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocations(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlanSummary forwards run summaries to sinks that accept them.
func (m *MultiSink) RecordPlanSummary(sum coremetrics.PlanSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PlanSummaryRecorder); ok {
			if err := rec.RecordPlanSummary(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordIteration forwards dual-ascent steps to sinks that accept them.
func (m *MultiSink) RecordIteration(rec coremetrics.IterationRecord) error {
	for _, s := range m.Sinks {
		if ir, ok := s.(coremetrics.IterationRecorder); ok {
			if err := ir.RecordIteration(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolveLatency forwards latency samples to sinks that accept them.
func (m *MultiSink) RecordSolveLatency(recs []coremetrics.SolveLatency) error {
	for _, s := range m.Sinks {
		if lr, ok := s.(coremetrics.SolveLatencyRecorder); ok {
			if err := lr.RecordSolveLatency(recs); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordNotice forwards diagnostics to sinks that accept them.
func (m *MultiSink) RecordNotice(n model.Notice) error {
	for _, s := range m.Sinks {
		if nr, ok := s.(coremetrics.NoticeRecorder); ok {
			if err := nr.RecordNotice(n); err != nil {
				return err
			}
		}
	}
	return nil
}
