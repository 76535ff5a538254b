package model

// ScheduleEntry is one day of irrigation for one parcel.
type ScheduleEntry struct {
	Day        int
	AppliedMM  float64 // water applied that day in mm depth
	MoistureMM float64 // soil moisture after the day's balance
}

// ParcelSchedule is the per-parcel slice of the final plan.
type ParcelSchedule struct {
	ParcelID   string
	Entries    []ScheduleEntry
	WaterMM    float64 // total water applied over the horizon
	Objective  float64 // realized yield value including the terminal score
	Efficiency float64 // applied versus crop requirement, percent capped at 100
	Infeasible bool    // true when the moisture floor could not be held on some day
}

// Diagnostics carries the run-level outcome of the coordination loop.
type Diagnostics struct {
	Converged     bool
	Iterations    int
	DualityGapMM  float64   // demand-capacity gap of the accepted iterate
	FinalPriceMM  float64   // accepted scalar shadow price, mm basis
	FinalPricesMM []float64 // per-day prices when daily pricing is enabled
	Notices       []Notice
}

// Schedule is the immutable result of a planning run. It contains no
// timestamps or generated identifiers so identical inputs reproduce an
// identical schedule byte for byte.
type Schedule struct {
	Horizon        int
	Parcels        []ParcelSchedule // sorted by parcel ID
	TotalObjective float64
	WaterUsedMM    float64
	WaterUsedM3    float64 // mm depth times hectares, reported as cubic meters
	WaterSavedMM   float64 // capacity left unused across the horizon
	DailyTotalsMM  []float64
	Diagnostics    Diagnostics
}

// Parcel returns the schedule for one parcel, or false when the parcel was
// excluded from the run.
func (s Schedule) Parcel(id string) (ParcelSchedule, bool) {
	for _, ps := range s.Parcels {
		if ps.ParcelID == id {
			return ps, true
		}
	}
	return ParcelSchedule{}, false
}

// HasNotice reports whether diagnostics contain a notice with the given code.
func (s Schedule) HasNotice(code NoticeCode) bool {
	for _, n := range s.Diagnostics.Notices {
		if n.Code == code {
			return true
		}
	}
	return false
}
