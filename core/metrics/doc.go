// Package metrics defines interfaces and record types for collecting
// planning metrics. Sinks like PromSink and InfluxSink record events such
// as per-parcel allocations or dual-ascent iterations and can be combined
// with MultiSink. Optional recorder interfaces let sinks opt in to the
// record kinds they can represent.
package metrics
