package solver

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fieldwise/aquaplan/core/model"
)

// Solution holds the value function and policy produced by one solve. All
// lookups snap continuous moisture levels to the grid the solve ran on, so
// callers can feed realized (off-lattice) levels back in.
type Solution struct {
	parcel  model.Parcel
	days    []model.DailyWeather
	grid    model.MoistureGrid
	horizon int
	buckets int
	prices  []float64
	values  *mat.Dense
	policy  []uint16
	cands   []float64
}

// Parcel returns the parcel the solution was computed for.
func (s *Solution) Parcel() model.Parcel { return s.parcel }

// Horizon returns the number of days covered by the policy.
func (s *Solution) Horizon() int { return s.horizon }

// Grid returns the moisture discretization the solve ran on.
func (s *Solution) Grid() model.MoistureGrid { return s.grid }

// MaxApplication returns the largest application on the candidate lattice.
func (s *Solution) MaxApplication() float64 { return s.cands[len(s.cands)-1] }

// Value returns the optimal value at the given day and moisture level.
// Day may equal the horizon, in which case the terminal score is returned.
func (s *Solution) Value(day int, moistureMM float64) float64 {
	return s.values.At(day, s.grid.Bucket(moistureMM))
}

// AllocationAt returns the policy's application for the given day and
// moisture level.
func (s *Solution) AllocationAt(day int, moistureMM float64) float64 {
	return s.cands[s.policy[day*s.buckets+s.grid.Bucket(moistureMM)]]
}

// Step advances the moisture balance by one day under the given application.
// The returned level sits on the grid. stressed reports that the pre-clamp
// balance fell below the wilting point, meaning the day dried out regardless
// of the application.
func (s *Solution) Step(day int, moistureMM, allocMM float64) (nextMM float64, stressed bool) {
	level := s.grid.Snap(moistureMM)
	carried := level - s.parcel.Soil.Drain(level) + s.days[day].Net() + allocMM
	return s.grid.Level(s.grid.Bucket(carried)), carried < s.grid.WiltMM
}

// ReduceOnce steps the application for one day down by one lattice notch and
// reports the marginal value lost per mm removed. The priced water cost is
// excluded so losses are comparable across parcels facing the same shadow
// price. ok is false when the application is already zero.
func (s *Solution) ReduceOnce(day int, moistureMM, allocMM float64) (newAllocMM, lossPerMM float64, ok bool) {
	idx := s.candidateIndex(allocMM)
	if idx == 0 {
		return 0, 0, false
	}
	reduced := s.cands[idx-1]
	level := s.grid.Snap(moistureMM)
	carried := level - s.parcel.Soil.Drain(level) + s.days[day].Net()
	kept := s.values.At(day+1, s.grid.Bucket(carried+s.cands[idx]))
	after := s.values.At(day+1, s.grid.Bucket(carried+reduced))
	step := s.cands[idx] - reduced
	return reduced, (kept - after) / step, true
}

// FloorApplication returns the largest lattice application not exceeding the
// given depth. Continuous redistribution results pass through here so the
// final schedule stays on the lattice.
func (s *Solution) FloorApplication(allocMM float64) float64 {
	best := 0.0
	for _, a := range s.cands {
		if a <= allocMM+1e-9 {
			best = a
		}
	}
	return best
}

// candidateIndex locates the lattice notch closest to the given application.
func (s *Solution) candidateIndex(allocMM float64) int {
	best, bestDiff := 0, allocMM
	if bestDiff < 0 {
		bestDiff = -bestDiff
	}
	for k, a := range s.cands {
		diff := allocMM - a
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = k, diff
		}
	}
	return best
}

// Trajectory follows the policy from the given initial moisture and returns
// the realized daily applications and end-of-day levels. Days where the
// moisture floor could not be held even at the maximum application mark the
// trajectory infeasible; the best-effort path is still returned.
type Trajectory struct {
	Applied    []float64 // application per day in mm
	Moisture   []float64 // end-of-day moisture per day in mm
	TotalMM    float64
	Infeasible bool
	DryDays    []int
}

func (s *Solution) Trajectory(initialMM float64) Trajectory {
	tr := Trajectory{
		Applied:  make([]float64, s.horizon),
		Moisture: make([]float64, s.horizon),
	}
	m := s.grid.Snap(initialMM)
	maxCand := s.cands[len(s.cands)-1]
	for t := 0; t < s.horizon; t++ {
		a := s.AllocationAt(t, m)
		next, stressed := s.Step(t, m, a)
		if stressed {
			// Even flooding the parcel cannot hold the floor on a dry day.
			if _, maxStressed := s.Step(t, m, maxCand); maxStressed {
				tr.Infeasible = true
				tr.DryDays = append(tr.DryDays, t)
			}
		}
		tr.Applied[t] = a
		tr.Moisture[t] = next
		tr.TotalMM += a
		m = next
	}
	return tr
}
