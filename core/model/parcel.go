package model

import (
	"fmt"
)

// Parcel represents a land parcel competing for the shared water supply.
// All fields are read-only during a planning run.
type Parcel struct {
	ID     string
	Name   string
	AreaHa float64 // cultivated area in hectares, used for volume reporting
	Region string  // forecast region key, defaults to the parcel ID when empty

	InitialMoistureMM float64 // soil moisture at day zero in mm depth
	MaxDailyMM        float64 // max water the hardware can apply per day in mm, 0 derives it from the crop requirement

	Soil SoilProfile
	Crop CropProfile
}

// SoilProfile describes the water retention behaviour of a parcel's soil.
type SoilProfile struct {
	WiltingMM       float64 // moisture below which the crop cannot extract water
	FieldCapacityMM float64 // moisture above which water drains away
	DrainCoeff      float64 // fraction of moisture above wilting lost to percolation per day
}

// Drain returns the depth lost to percolation for a given moisture level.
func (s SoilProfile) Drain(moistureMM float64) float64 {
	excess := moistureMM - s.WiltingMM
	if excess <= 0 {
		return 0
	}
	return s.DrainCoeff * excess
}

// MoistureFrac maps a moisture depth to the 0..1 range between the wilting
// point and field capacity.
func (s SoilProfile) MoistureFrac(moistureMM float64) float64 {
	span := s.FieldCapacityMM - s.WiltingMM
	if span <= 0 {
		return 0
	}
	frac := (moistureMM - s.WiltingMM) / span
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// CropProfile holds the yield response parameters of the crop grown on a
// parcel. Moisture targets are expressed on the same mm scale as the soil
// profile.
type CropProfile struct {
	Type        CropType
	GrowthStage int // index into the seasonal growth curve, 0 based

	YieldScale   float64 // marginal yield value at full moisture adequacy
	TargetLowMM  float64 // lower edge of the optimal moisture band
	TargetHighMM float64 // upper edge of the optimal moisture band

	WaterlogPenalty float64 // yield loss per mm above the optimal band
	TerminalWeight  float64 // weight of the end-of-horizon moisture target
}

// YieldGain returns the yield value accrued for one day spent at the given
// moisture level. The response ramps linearly from the wilting point to the
// lower target, stays flat across the optimal band and degrades above it.
func (c CropProfile) YieldGain(moistureMM, wiltingMM float64) float64 {
	switch {
	case moistureMM <= wiltingMM:
		return 0
	case moistureMM < c.TargetLowMM:
		return c.YieldScale * (moistureMM - wiltingMM) / (c.TargetLowMM - wiltingMM)
	case moistureMM <= c.TargetHighMM:
		return c.YieldScale
	default:
		return c.YieldScale - c.WaterlogPenalty*(moistureMM-c.TargetHighMM)
	}
}

// TerminalValue scores the end-of-horizon moisture level. Levels inside the
// optimal band are free, deviations are charged proportionally.
func (c CropProfile) TerminalValue(moistureMM float64) float64 {
	var dev float64
	if moistureMM < c.TargetLowMM {
		dev = c.TargetLowMM - moistureMM
	} else if moistureMM > c.TargetHighMM {
		dev = moistureMM - c.TargetHighMM
	}
	return -c.TerminalWeight * dev
}

// Validate checks that the parcel definition is usable for planning.
// Violations are reported as ErrMalformedParcel so callers can isolate the
// parcel without aborting the run.
func (p Parcel) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: missing parcel id", ErrMalformedParcel)
	}
	if p.AreaHa <= 0 {
		return fmt.Errorf("%w: parcel %s: area must be positive", ErrMalformedParcel, p.ID)
	}
	if p.Soil.WiltingMM < 0 {
		return fmt.Errorf("%w: parcel %s: wilting point must not be negative", ErrMalformedParcel, p.ID)
	}
	if p.Soil.WiltingMM >= p.Soil.FieldCapacityMM {
		return fmt.Errorf("%w: parcel %s: field capacity must exceed wilting point", ErrMalformedParcel, p.ID)
	}
	if p.Soil.DrainCoeff < 0 || p.Soil.DrainCoeff > 1 {
		return fmt.Errorf("%w: parcel %s: drain coefficient must be within [0,1]", ErrMalformedParcel, p.ID)
	}
	if p.MaxDailyMM < 0 {
		return fmt.Errorf("%w: parcel %s: max daily application must not be negative", ErrMalformedParcel, p.ID)
	}
	if p.Crop.YieldScale <= 0 {
		return fmt.Errorf("%w: parcel %s: crop yield scale must be positive", ErrMalformedParcel, p.ID)
	}
	if p.Crop.TargetLowMM >= p.Crop.TargetHighMM {
		return fmt.Errorf("%w: parcel %s: moisture target band is empty", ErrMalformedParcel, p.ID)
	}
	if p.Crop.WaterlogPenalty < 0 || p.Crop.TerminalWeight < 0 {
		return fmt.Errorf("%w: parcel %s: crop penalties must not be negative", ErrMalformedParcel, p.ID)
	}
	return nil
}

// ForecastRegion returns the forecast key for the parcel.
func (p Parcel) ForecastRegion() string {
	if p.Region != "" {
		return p.Region
	}
	return p.ID
}
