package planner

import (
	"github.com/fieldwise/aquaplan/core/cropwater"
	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/core/solver"
)

// assemble merges the reconciled per-parcel trajectories into the final
// Schedule. Pure aggregation: every decision was made upstream. The output
// carries no timestamps or generated identifiers so identical inputs
// reproduce an identical schedule.
func assemble(req model.PlanRequest, inputs []parcelInput, sols []*solver.Solution, red reduceResult, diag model.Diagnostics) model.Schedule {
	caps := req.CapacitySeries()
	s := model.Schedule{
		Horizon:       req.Horizon,
		Parcels:       make([]model.ParcelSchedule, 0, len(inputs)),
		DailyTotalsMM: make([]float64, req.Horizon),
		Diagnostics:   diag,
	}

	for i, in := range inputs {
		if sols[i] == nil {
			continue
		}
		ps := model.ParcelSchedule{
			ParcelID:   in.parcel.ID,
			Entries:    make([]model.ScheduleEntry, req.Horizon),
			Infeasible: red.infeasible[i],
		}
		grid := sols[i].Grid()
		level := grid.Snap(in.parcel.InitialMoistureMM)
		var required float64
		for t := 0; t < req.Horizon; t++ {
			applied := red.applied[i][t]
			ps.Entries[t] = model.ScheduleEntry{
				Day:        t,
				AppliedMM:  applied,
				MoistureMM: red.moisture[i][t],
			}
			ps.WaterMM += applied
			s.DailyTotalsMM[t] += applied

			w := in.forecast.Days[t]
			ps.Objective += in.parcel.Crop.YieldGain(level, in.parcel.Soil.WiltingMM)
			required += cropwater.DailyRequirement(in.parcel.Crop.Type, in.parcel.Crop.GrowthStage, cropwater.Conditions{
				SoilMoistureFrac: in.parcel.Soil.MoistureFrac(level),
				TempC:            w.TempMeanC,
				HumidityPct:      w.HumidityPct,
				RainMM:           w.RainMM,
			})
			level = red.moisture[i][t]
		}
		ps.Objective += in.parcel.Crop.TerminalValue(level)
		ps.Efficiency = cropwater.Efficiency(ps.WaterMM, required)

		s.TotalObjective += ps.Objective
		s.WaterUsedMM += ps.WaterMM
		s.WaterUsedM3 += ps.WaterMM * in.parcel.AreaHa * 10
		s.Parcels = append(s.Parcels, ps)
	}

	for _, c := range caps {
		s.WaterSavedMM += c
	}
	s.WaterSavedMM -= s.WaterUsedMM
	if s.WaterSavedMM < 0 {
		s.WaterSavedMM = 0
	}
	return s
}
