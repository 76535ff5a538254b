package metrics

import (
	"time"

	"github.com/fieldwise/aquaplan/core/model"
)

// AllocationRecord represents one parcel-day allocation to be recorded.
type AllocationRecord struct {
	RunID      string
	ParcelID   string
	Crop       model.CropType
	Day        int
	AppliedMM  float64
	MoistureMM float64
	Reduced    bool // true when the feasibility pass trimmed this day
	Time       time.Time
}

// MetricsSink records planning results for observability purposes.
type MetricsSink interface {
	RecordAllocations(recs []AllocationRecord) error
}

// PlanSummary captures the run-level outcome of a planning run.
type PlanSummary struct {
	RunID       string
	Parcels     int
	Horizon     int
	Converged   bool
	Iterations  int
	GapMM       float64
	PriceMM     float64
	Objective   float64
	WaterUsedMM float64
	WaterM3     float64
	Time        time.Time
}

// PlanSummaryRecorder records run-level summaries.
type PlanSummaryRecorder interface {
	RecordPlanSummary(s PlanSummary) error
}

// IterationRecord captures one dual-ascent iteration.
type IterationRecord struct {
	RunID     string
	Iteration int
	PriceMM   float64
	DemandMM  float64
	GapMM     float64
	Time      time.Time
}

// IterationRecorder records dual-ascent iterations.
type IterationRecorder interface {
	RecordIteration(rec IterationRecord) error
}

// SolveLatency represents the duration of one parcel solve.
type SolveLatency struct {
	ParcelID string
	Crop     model.CropType
	Latency  time.Duration
}

// SolveLatencyRecorder is implemented by sinks able to record solve latency.
type SolveLatencyRecorder interface {
	RecordSolveLatency(latencies []SolveLatency) error
}

// NoticeRecorder records per-parcel diagnostics.
type NoticeRecorder interface {
	RecordNotice(n model.Notice) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAllocations([]AllocationRecord) error { return nil }
func (NopSink) RecordPlanSummary(PlanSummary) error        { return nil }
func (NopSink) RecordIteration(IterationRecord) error      { return nil }
func (NopSink) RecordSolveLatency([]SolveLatency) error    { return nil }
func (NopSink) RecordNotice(model.Notice) error            { return nil }
