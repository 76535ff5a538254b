package model

import "math"

// MoistureGrid discretizes the moisture range of a soil profile into evenly
// spaced buckets between the wilting point and field capacity. Mapping a
// continuous level to its nearest bucket is the only approximation the
// planner introduces; a finer StepMM trades memory and solve time for
// accuracy.
type MoistureGrid struct {
	WiltMM float64
	CapMM  float64
	StepMM float64
}

// NewMoistureGrid builds the grid for a soil profile. A non-positive step
// falls back to 1 mm.
func NewMoistureGrid(soil SoilProfile, stepMM float64) MoistureGrid {
	if stepMM <= 0 {
		stepMM = 1
	}
	return MoistureGrid{WiltMM: soil.WiltingMM, CapMM: soil.FieldCapacityMM, StepMM: stepMM}
}

// Buckets returns the number of discrete moisture levels.
func (g MoistureGrid) Buckets() int {
	return int(math.Ceil((g.CapMM-g.WiltMM)/g.StepMM)) + 1
}

// Level returns the moisture depth of bucket i. The last bucket is pinned to
// field capacity even when the range is not an exact multiple of the step.
func (g MoistureGrid) Level(i int) float64 {
	lvl := g.WiltMM + float64(i)*g.StepMM
	if lvl > g.CapMM {
		return g.CapMM
	}
	return lvl
}

// Bucket maps a moisture depth to its nearest bucket index.
func (g MoistureGrid) Bucket(moistureMM float64) int {
	i := int(math.Round((g.Clamp(moistureMM) - g.WiltMM) / g.StepMM))
	if last := g.Buckets() - 1; i > last {
		return last
	}
	if i < 0 {
		return 0
	}
	return i
}

// Snap rounds a moisture depth to the level of its nearest bucket.
func (g MoistureGrid) Snap(moistureMM float64) float64 {
	return g.Level(g.Bucket(moistureMM))
}

// Clamp bounds a moisture depth to the physical range of the soil.
func (g MoistureGrid) Clamp(moistureMM float64) float64 {
	if moistureMM < g.WiltMM {
		return g.WiltMM
	}
	if moistureMM > g.CapMM {
		return g.CapMM
	}
	return moistureMM
}
