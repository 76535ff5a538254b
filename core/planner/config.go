package planner

import (
	"fmt"
	"runtime"
)

// Price modes supported by the coordinator. Scalar mode prices the whole
// horizon with one value and converges fastest; daily mode keeps one price
// per day for strict per-day budgets.
const (
	PriceModeScalar = "scalar"
	PriceModeDaily  = "daily"
)

// Config defines coordination and discretization settings for planning runs.
type Config struct {
	// PriceMode selects "scalar" (default) or "daily" shadow pricing.
	PriceMode string `json:"price_mode"`
	// MoistureStepMM is the soil moisture bucket width.
	MoistureStepMM float64 `json:"moisture_step_mm"`
	// AllocationStepMM is the spacing of candidate applications.
	AllocationStepMM float64 `json:"allocation_step_mm"`
	// Tolerance is the accepted duality gap as a fraction of total capacity.
	Tolerance float64 `json:"tolerance"`
	// MaxIterations caps the dual-ascent loop.
	MaxIterations int `json:"max_iterations"`
	// Step0 is the initial ascent step, decayed as step0/sqrt(k).
	Step0 float64 `json:"step0"`
	// Workers bounds concurrent parcel solves. Zero uses the CPU count.
	Workers int `json:"workers"`
	// LPReduction enables the per-day LP redistribution before the greedy
	// reduction loop in the feasibility pass.
	LPReduction bool `json:"lp_reduction"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PriceMode == "" {
		c.PriceMode = PriceModeScalar
	}
	if c.MoistureStepMM <= 0 {
		c.MoistureStepMM = 1
	}
	if c.AllocationStepMM <= 0 {
		c.AllocationStepMM = 1
	}
	if c.Tolerance <= 0 {
		c.Tolerance = 0.01
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 200
	}
	if c.Step0 <= 0 {
		c.Step0 = 1
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.PriceMode != PriceModeScalar && c.PriceMode != PriceModeDaily {
		return fmt.Errorf("unknown price mode %q", c.PriceMode)
	}
	if c.Tolerance >= 1 {
		return fmt.Errorf("tolerance must be below 1, got %v", c.Tolerance)
	}
	return nil
}
