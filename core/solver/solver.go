// Package solver computes optimal irrigation trajectories for a single
// parcel by backward induction over a discretized soil moisture grid. Each
// solve treats the shadow price of water as a read-only input; coordination
// across parcels happens one level up in the planner.
package solver

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/fieldwise/aquaplan/core/cropwater"
	"github.com/fieldwise/aquaplan/core/model"
)

// Solver holds the discretization settings shared by all parcel solves of a
// planning run. The zero value uses 1 mm steps and no application ceiling.
type Solver struct {
	MoistureStepMM   float64 // moisture bucket width
	AllocationStepMM float64 // spacing of candidate applications
	MaxAllocationMM  float64 // ceiling from the shared source, 0 = no ceiling
}

// New returns a Solver with the given discretization steps.
func New(moistureStepMM, allocationStepMM float64) Solver {
	return Solver{MoistureStepMM: moistureStepMM, AllocationStepMM: allocationStepMM}
}

// Solve runs backward induction for one parcel under the given per-day
// shadow prices and returns the value function and policy. The objective per
// day is the yield gain at the current moisture minus the priced water cost;
// the terminal row scores the end-of-horizon moisture against the crop's
// target band. Ties between candidate applications are broken toward the
// lower application.
func (s Solver) Solve(parcel model.Parcel, forecast model.Forecast, horizon int, prices []float64) (*Solution, error) {
	start := time.Now()
	if err := parcel.Validate(); err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if !forecast.Covers(horizon) {
		return nil, fmt.Errorf("%w: parcel %s: forecast %q covers %d of %d days",
			model.ErrIncompleteForecast, parcel.ID, forecast.Region, len(forecast.Days), horizon)
	}
	if len(prices) < horizon {
		return nil, fmt.Errorf("price vector covers %d of %d days", len(prices), horizon)
	}

	grid := model.NewMoistureGrid(parcel.Soil, s.MoistureStepMM)
	cands := s.candidates(parcel)
	days := forecast.Days[:horizon]
	buckets := grid.Buckets()

	values := mat.NewDense(horizon+1, buckets, nil)
	policy := make([]uint16, horizon*buckets)

	for i := 0; i < buckets; i++ {
		values.Set(horizon, i, parcel.Crop.TerminalValue(grid.Level(i)))
	}
	for t := horizon - 1; t >= 0; t-- {
		net := days[t].Net()
		for i := 0; i < buckets; i++ {
			level := grid.Level(i)
			carried := level - parcel.Soil.Drain(level) + net
			best := math.Inf(-1)
			bestK := 0
			for k, a := range cands {
				q := -prices[t]*a + values.At(t+1, grid.Bucket(carried+a))
				if q > best {
					best = q
					bestK = k
				}
			}
			values.Set(t, i, parcel.Crop.YieldGain(level, parcel.Soil.WiltingMM)+best)
			policy[t*buckets+i] = uint16(bestK)
		}
	}

	sol := &Solution{
		parcel:  parcel,
		days:    days,
		grid:    grid,
		horizon: horizon,
		buckets: buckets,
		prices:  append([]float64(nil), prices[:horizon]...),
		values:  values,
		policy:  policy,
		cands:   cands,
	}
	solveDuration.WithLabelValues(parcel.Crop.Type.String()).Observe(time.Since(start).Seconds())
	solvesTotal.WithLabelValues(parcel.Crop.Type.String()).Inc()
	return sol, nil
}

// candidates enumerates the application lattice for a parcel: multiples of
// AllocationStepMM up to the per-day bound, with the bound itself appended
// when it falls off the lattice. A zero parcel bound falls back to the
// crop's peak daily requirement, and the shared-source ceiling caps both.
func (s Solver) candidates(parcel model.Parcel) []float64 {
	step := s.AllocationStepMM
	if step <= 0 {
		step = 1
	}
	bound := parcel.MaxDailyMM
	if bound <= 0 {
		bound = cropwater.PeakRequirement(parcel.Crop.Type, parcel.Crop.GrowthStage)
	}
	if s.MaxAllocationMM > 0 && bound > s.MaxAllocationMM {
		bound = s.MaxAllocationMM
	}
	n := int(math.Floor(bound/step + 1e-9))
	cands := make([]float64, 0, n+2)
	for k := 0; k <= n; k++ {
		cands = append(cands, float64(k)*step)
	}
	if cands[len(cands)-1] < bound-1e-9 {
		cands = append(cands, bound)
	}
	return cands
}
