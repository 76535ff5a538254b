package planner

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/fieldwise/aquaplan/core/events"
	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/core/solver"
)

// capSlack absorbs float rounding when comparing a day's total against its
// capacity.
const capSlack = 1e-9

// reduceResult carries the reconciled trajectories out of the feasibility
// pass. Slices are parcel-major and index-aligned with the planner's inputs.
type reduceResult struct {
	applied    [][]float64 // applied[i][t], mm
	moisture   [][]float64 // end-of-day moisture, mm
	reducedMM  []float64   // depth trimmed per day
	infeasible []bool
	notices    []model.Notice
}

// reduce walks the horizon chronologically and trims each over-subscribed
// day until the hard capacity constraint holds. Reduction order follows the
// marginal value lost per mm, smallest first, with ties going to the lower
// parcel ID. Moisture then advances with the final applications, so later
// days react to earlier trims. Single-threaded by design: each day's
// decisions depend on every parcel's state for that day.
func (p *Planner) reduce(runID string, inputs []parcelInput, sols []*solver.Solution, caps []float64) reduceResult {
	horizon := len(caps)
	res := reduceResult{
		applied:    make([][]float64, len(inputs)),
		moisture:   make([][]float64, len(inputs)),
		reducedMM:  make([]float64, horizon),
		infeasible: make([]bool, len(inputs)),
	}
	m := make([]float64, len(inputs))
	for i := range inputs {
		res.applied[i] = make([]float64, horizon)
		res.moisture[i] = make([]float64, horizon)
		if sols[i] != nil {
			m[i] = sols[i].Grid().Snap(inputs[i].parcel.InitialMoistureMM)
		}
	}

	dryDay := make([]int, len(inputs))
	for t := 0; t < horizon; t++ {
		day := make([]float64, len(inputs))
		var planned float64
		for i, sol := range sols {
			if sol == nil {
				continue
			}
			day[i] = sol.AllocationAt(t, m[i])
			planned += day[i]
		}

		if planned > caps[t]+capSlack && p.cfg.LPReduction {
			p.lpReduceDay(t, caps[t], day, m, sols)
		}
		for sum(day) > caps[t]+capSlack {
			i, reduced, ok := cheapestReduction(t, day, m, sols)
			if !ok {
				break
			}
			day[i] = reduced
		}

		if trimmed := planned - sum(day); trimmed > capSlack {
			res.reducedMM[t] = trimmed
			reductionTotal.Add(trimmed)
			res.notices = append(res.notices, model.Notice{
				Code: model.NoticeCapacityRoundingLoss, Day: t,
				Detail: fmt.Sprintf("reduced %.3f mm to meet capacity %.3f mm", trimmed, caps[t]),
			})
			if p.bus != nil {
				p.bus.Publish(events.ReductionEvent{RunID: runID, Day: t, ReducedMM: trimmed})
			}
		}

		for i, sol := range sols {
			if sol == nil {
				continue
			}
			next, stressed := sol.Step(t, m[i], day[i])
			if stressed {
				if _, maxStressed := sol.Step(t, m[i], sol.MaxApplication()); maxStressed && !res.infeasible[i] {
					res.infeasible[i] = true
					dryDay[i] = t
				}
			}
			res.applied[i][t] = day[i]
			res.moisture[i][t] = next
			m[i] = next
		}
	}

	for i, bad := range res.infeasible {
		if bad {
			res.notices = append(res.notices, model.Notice{
				Code: model.NoticeInfeasibleParcel, ParcelID: inputs[i].parcel.ID, Day: dryDay[i],
				Detail: "moisture floor unreachable even at maximum application",
			})
		}
	}
	return res
}

// cheapestReduction finds the parcel whose next lattice step down loses the
// least value per mm. Exact loss ties go to the parcel holding the larger
// remaining allocation, so identical parcels shed water evenly; remaining
// ties fall to the lower parcel ID because inputs are sorted by ID.
func cheapestReduction(t int, day, m []float64, sols []*solver.Solution) (int, float64, bool) {
	bestIdx, bestNew := -1, 0.0
	bestLoss := math.Inf(1)
	for i, sol := range sols {
		if sol == nil || day[i] <= 0 {
			continue
		}
		reduced, loss, ok := sol.ReduceOnce(t, m[i], day[i])
		if !ok {
			continue
		}
		if loss < bestLoss || (loss == bestLoss && day[i] > day[bestIdx]) {
			bestIdx, bestNew, bestLoss = i, reduced, loss
		}
	}
	if bestIdx < 0 {
		return 0, 0, false
	}
	return bestIdx, bestNew, true
}

// lpReduceDay redistributes a day's allocations with a simplex solve before
// the greedy loop: keep the most valuable mm subject to the capacity. LP
// results come back continuous, so they are floored onto each parcel's
// lattice and the greedy loop cleans up whatever remains. Solver failures
// fall through to the greedy loop untouched.
func (p *Planner) lpReduceDay(t int, cap float64, day, m []float64, sols []*solver.Solution) {
	var idx []int
	var worth, planned []float64
	for i, sol := range sols {
		if sol == nil || day[i] <= 0 {
			continue
		}
		_, loss, ok := sol.ReduceOnce(t, m[i], day[i])
		if !ok {
			continue
		}
		idx = append(idx, i)
		worth = append(worth, math.Max(loss, 0))
		planned = append(planned, day[i])
	}
	if len(idx) == 0 {
		return
	}
	solution, err := lpSolve(worth, planned, cap)
	if err != nil {
		p.log.Warnf("lp reduction failed on day %d, using greedy pass: %v", t, err)
		return
	}
	for k, i := range idx {
		x := solution[k]
		if x < 0 {
			x = 0
		}
		if x > planned[k] {
			x = planned[k]
		}
		day[i] = sols[i].FloorApplication(x)
	}
}

// solveLP runs the simplex algorithm to maximise the retained value subject
// to per-parcel planned bounds and the shared capacity.
func solveLP(worth, bounds []float64, cap float64) ([]float64, error) {
	c := make([]float64, len(worth))
	for i, w := range worth {
		c[i] = -w
	}

	g := mat.NewDense(len(bounds), len(bounds), nil)
	h := make([]float64, len(bounds))
	for i, b := range bounds {
		g.Set(i, i, 1)
		h[i] = b
	}

	a := mat.NewDense(1, len(bounds), nil)
	for i := range bounds {
		a.Set(0, i, 1)
	}
	b := []float64{cap}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, sol, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	return sol, err
}

// lpSolve points to the function used to solve the LP. It can be overridden
// in tests to simulate solver failures.
var lpSolve = solveLP
