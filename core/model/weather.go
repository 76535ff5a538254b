package model

// DailyWeather holds the exogenous water terms for one day of the horizon.
// Temperature and humidity only feed the crop requirement model; zero values
// are treated as neutral there.
type DailyWeather struct {
	RainMM      float64 // expected rainfall in mm depth
	ET0MM       float64 // reference evapotranspiration in mm depth
	TempMeanC   float64 // mean air temperature in Celsius
	HumidityPct float64 // relative humidity in percent
}

// Net returns the weather contribution to the moisture balance for the day.
func (w DailyWeather) Net() float64 {
	return w.RainMM - w.ET0MM
}

// Forecast is the per-region weather series consumed by the planner.
// It is read-only for the duration of a run.
type Forecast struct {
	Region string
	Days   []DailyWeather
}

// Covers reports whether the forecast provides at least horizon days.
func (f Forecast) Covers(horizon int) bool {
	return len(f.Days) >= horizon
}
