// Package cropwater estimates daily crop water requirements from crop type,
// growth stage and environmental conditions. The planner uses it to derive
// application bounds and to score how well a schedule covers the crop's
// needs.
package cropwater

import (
	"github.com/fieldwise/aquaplan/core/model"
)

// Conditions carries the environmental inputs of the requirement model.
// Zero temperature and humidity are treated as neutral so partially filled
// forecasts do not skew the estimate.
type Conditions struct {
	SoilMoistureFrac float64 // 0 dry to 1 saturated
	TempC            float64 // mean air temperature in Celsius
	HumidityPct      float64 // relative humidity in percent
	RainMM           float64 // forecast rain credited against the requirement
}

// growthMultipliers scales the base requirement across the season, from
// emergence through peak growth to senescence.
var growthMultipliers = [...]float64{0.3, 0.6, 1.0, 1.2, 0.8, 0.4}

// BaseRequirement returns the reference daily water need of a crop in mm.
func BaseRequirement(crop model.CropType) float64 {
	switch crop {
	case model.CropCorn:
		return 2.5
	case model.CropWheat:
		return 1.8
	case model.CropSoybeans:
		return 2.0
	case model.CropCotton:
		return 2.2
	case model.CropRice:
		return 3.5
	default:
		return 2.0
	}
}

// GrowthMultiplier returns the seasonal adjustment for a growth stage.
// Stages beyond the curve saturate at the last value.
func GrowthMultiplier(stage int) float64 {
	if stage < 0 {
		stage = 0
	}
	if stage >= len(growthMultipliers) {
		stage = len(growthMultipliers) - 1
	}
	return growthMultipliers[stage]
}

// DailyRequirement estimates the net water need of a crop for one day in mm.
// Warm and dry conditions raise the need, humid air and wet soil lower it,
// and forecast rain is credited directly. The result never goes negative.
func DailyRequirement(crop model.CropType, stage int, cond Conditions) float64 {
	req := BaseRequirement(crop) * GrowthMultiplier(stage)

	temp := cond.TempC
	if temp == 0 {
		temp = 20
	}
	humidity := cond.HumidityPct
	if humidity == 0 {
		humidity = 50
	}
	req *= 1 + (temp-20)/100
	req *= 1 - (humidity-50)/200

	soil := 1 - cond.SoilMoistureFrac
	if soil < 0.1 {
		soil = 0.1
	}
	req *= soil

	req -= cond.RainMM
	if req < 0 {
		return 0
	}
	return req
}

// PeakRequirement is the requirement for dry soil under neutral weather.
// It bounds per-day applications when hardware limits are not configured.
func PeakRequirement(crop model.CropType, stage int) float64 {
	return DailyRequirement(crop, stage, Conditions{})
}

// Efficiency scores how much of the requirement an application covered, as a
// percentage capped at 100. A zero requirement counts as fully covered.
func Efficiency(appliedMM, requiredMM float64) float64 {
	if requiredMM <= 0 {
		return 100
	}
	ratio := appliedMM / requiredMM
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}
