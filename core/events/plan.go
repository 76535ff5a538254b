package events

import "github.com/fieldwise/aquaplan/core/model"

// PlanStartedEvent is published when a planning run begins.
type PlanStartedEvent struct {
	RunID   string
	Parcels int
	Horizon int
}

// IterationEvent is published after each dual-ascent iteration.
type IterationEvent struct {
	RunID     string
	Iteration int
	PriceMM   float64 // scalar price, or the mean in daily pricing mode
	DemandMM  float64 // aggregate demand over the horizon
	GapMM     float64 // duality gap of this iterate
}

// ReductionEvent is published when the feasibility pass trims a day.
type ReductionEvent struct {
	RunID     string
	Day       int
	ReducedMM float64
}

// ParcelNoticeEvent carries a per-parcel diagnostic raised during planning.
type ParcelNoticeEvent struct {
	RunID  string
	Notice model.Notice
}

// PlanCompletedEvent is published once the schedule has been assembled.
type PlanCompletedEvent struct {
	RunID       string
	Converged   bool
	Iterations  int
	Objective   float64
	WaterUsedMM float64
}
