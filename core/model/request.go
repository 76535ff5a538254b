package model

import "fmt"

// PlanRequest bundles everything a planning run consumes. It is treated as
// immutable once handed to the planner.
type PlanRequest struct {
	Parcels         []Parcel
	Forecasts       map[string]Forecast // keyed by forecast region
	DailyCapacityMM float64             // shared water the source can deliver per day, mm depth equivalent
	CapacityProfile []float64           // optional per-day capacities overriding DailyCapacityMM, mm depth
	Horizon         int                 // number of days to plan
}

// ForecastFor resolves the forecast for a parcel through its region key.
func (r PlanRequest) ForecastFor(p Parcel) (Forecast, bool) {
	f, ok := r.Forecasts[p.ForecastRegion()]
	return f, ok
}

// CapacitySeries materializes the per-day source capacity over the horizon.
func (r PlanRequest) CapacitySeries() []float64 {
	caps := make([]float64, r.Horizon)
	for t := range caps {
		if t < len(r.CapacityProfile) {
			caps[t] = r.CapacityProfile[t]
		} else {
			caps[t] = r.DailyCapacityMM
		}
	}
	return caps
}

// TotalCapacityMM is the water the source can deliver over the whole horizon.
func (r PlanRequest) TotalCapacityMM() float64 {
	var total float64
	for _, c := range r.CapacitySeries() {
		total += c
	}
	return total
}

// Validate checks the request-level inputs. Per-parcel validation is left to
// the planner so a single bad parcel does not reject the whole request.
func (r PlanRequest) Validate() error {
	if r.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", r.Horizon)
	}
	if r.DailyCapacityMM < 0 {
		return fmt.Errorf("daily capacity must not be negative, got %.2f", r.DailyCapacityMM)
	}
	if len(r.CapacityProfile) > 0 && len(r.CapacityProfile) < r.Horizon {
		return fmt.Errorf("capacity profile covers %d of %d days", len(r.CapacityProfile), r.Horizon)
	}
	for t, c := range r.CapacityProfile {
		if c < 0 {
			return fmt.Errorf("capacity profile day %d must not be negative, got %.2f", t, c)
		}
	}
	if len(r.Parcels) == 0 {
		return fmt.Errorf("request contains no parcels")
	}
	return nil
}
