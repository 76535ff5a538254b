package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fieldwise/aquaplan/infra/planfile"
)

// Range bounds an asserted value.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Expected lists the assertions a scenario makes about its schedule.
type Expected struct {
	// Converged asserts the convergence outcome when non-nil.
	Converged *bool `yaml:"converged,omitempty"`
	// MaxWaterUsedMM caps the total applied depth. Zero skips the check.
	MaxWaterUsedMM float64 `yaml:"max_water_used_mm,omitempty"`
	// FinalMoistureMM bounds the end-of-horizon moisture per parcel.
	FinalMoistureMM map[string]Range `yaml:"final_moisture_mm,omitempty"`
	// EqualParcels groups parcels whose daily allocations must match exactly.
	EqualParcels [][]string `yaml:"equal_parcels,omitempty"`
	// ExcludedParcels must not appear in the schedule.
	ExcludedParcels []string `yaml:"excluded_parcels,omitempty"`
	// FullFirstDay lists parcels that must receive their maximum on day 0.
	FullFirstDay []string `yaml:"full_first_day,omitempty"`
}

// Scenario is one acceptance case: a planfile-shaped request plus the
// properties its schedule must satisfy.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	PriceMode     string `yaml:"price_mode,omitempty"`
	MaxIterations int    `yaml:"max_iterations,omitempty"`
	LPReduction   bool   `yaml:"lp_reduction,omitempty"`

	Plan     planfile.PlanFile `yaml:"plan"`
	Expected Expected          `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
