// Package events defines the planning related events emitted on the event bus.
//
// Available event types:
//   - PlanStartedEvent: a planning run began
//   - IterationEvent: one dual-ascent iteration completed
//   - ReductionEvent: the feasibility pass trimmed a day's allocations
//   - ParcelNoticeEvent: a per-parcel diagnostic was raised
//   - PlanCompletedEvent: the schedule was assembled
package events
