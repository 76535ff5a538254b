package cropwater

import (
	"math"
	"testing"

	"github.com/fieldwise/aquaplan/core/model"
)

func TestBaseRequirementPerCrop(t *testing.T) {
	cases := map[model.CropType]float64{
		model.CropCorn:     2.5,
		model.CropWheat:    1.8,
		model.CropSoybeans: 2.0,
		model.CropCotton:   2.2,
		model.CropRice:     3.5,
	}
	for crop, want := range cases {
		if got := BaseRequirement(crop); got != want {
			t.Fatalf("%s: expected %v, got %v", crop, want, got)
		}
	}
}

func TestGrowthMultiplierSaturates(t *testing.T) {
	if m := GrowthMultiplier(3); m != 1.2 {
		t.Fatalf("expected peak multiplier 1.2, got %v", m)
	}
	if m := GrowthMultiplier(99); m != 0.4 {
		t.Fatalf("expected late-season multiplier 0.4, got %v", m)
	}
	if m := GrowthMultiplier(-1); m != 0.3 {
		t.Fatalf("expected early multiplier 0.3, got %v", m)
	}
}

func TestDailyRequirementAdjustments(t *testing.T) {
	cond := Conditions{SoilMoistureFrac: 0.3, TempC: 25, HumidityPct: 60, RainMM: 0.1}
	got := DailyRequirement(model.CropCorn, 2, cond)
	// 2.5 * 1.0 * 1.05 * 0.95 * 0.7 - 0.1
	want := 2.5*1.05*0.95*0.7 - 0.1
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDailyRequirementNeutralDefaults(t *testing.T) {
	dry := DailyRequirement(model.CropWheat, 2, Conditions{})
	if math.Abs(dry-1.8) > 1e-9 {
		t.Fatalf("expected neutral factors to leave base requirement, got %v", dry)
	}
}

func TestDailyRequirementSoilFloor(t *testing.T) {
	wet := DailyRequirement(model.CropCorn, 2, Conditions{SoilMoistureFrac: 1})
	if math.Abs(wet-0.25) > 1e-9 {
		t.Fatalf("expected soil factor floor at 0.1, got %v", wet)
	}
}

func TestDailyRequirementNeverNegative(t *testing.T) {
	got := DailyRequirement(model.CropWheat, 0, Conditions{RainMM: 10})
	if got != 0 {
		t.Fatalf("expected rain to floor the requirement at zero, got %v", got)
	}
}

func TestEfficiency(t *testing.T) {
	if e := Efficiency(1, 2); e != 50 {
		t.Fatalf("expected 50, got %v", e)
	}
	if e := Efficiency(5, 2); e != 100 {
		t.Fatalf("expected cap at 100, got %v", e)
	}
	if e := Efficiency(0, 0); e != 100 {
		t.Fatalf("expected zero requirement to count as covered, got %v", e)
	}
}
