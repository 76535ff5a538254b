package planfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fieldwise/aquaplan/core/model"
)

const sampleYAML = `
horizon_days: 3
daily_capacity_mm: 5
parcels:
  - id: north-7
    area_ha: 2.5
    initial_moisture_mm: 44
    max_daily_mm: 5
    soil:
      wilting_mm: 0
      field_capacity_mm: 100
    crop:
      type: corn
      yield_scale: 10
      target_low_mm: 50
      target_high_mm: 100
      terminal_weight: 1
forecasts:
  north-7:
    - {rain_mm: 0, et0_mm: 2}
    - {rain_mm: 1.5, et0_mm: 2, temp_mean_c: 24, humidity_pct: 60}
    - {rain_mm: 0, et0_mm: 2}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	req, err := Load(writeFile(t, "plan.yaml", sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Horizon != 3 || req.DailyCapacityMM != 5 {
		t.Fatalf("request header wrong: %+v", req)
	}
	if len(req.Parcels) != 1 || req.Parcels[0].Crop.Type != model.CropCorn {
		t.Fatalf("parcel mapping wrong: %+v", req.Parcels)
	}
	f, ok := req.ForecastFor(req.Parcels[0])
	if !ok || len(f.Days) != 3 {
		t.Fatalf("forecast mapping wrong: %+v", f)
	}
	if f.Days[1].RainMM != 1.5 || f.Days[1].HumidityPct != 60 {
		t.Fatalf("forecast day wrong: %+v", f.Days[1])
	}
}

func TestLoadJSON(t *testing.T) {
	content := `{
		"horizon_days": 2,
		"daily_capacity_mm": 4,
		"parcels": [{
			"id": "a", "area_ha": 1, "initial_moisture_mm": 30,
			"soil": {"wilting_mm": 10, "field_capacity_mm": 80},
			"crop": {"type": "wheat", "yield_scale": 5, "target_low_mm": 40, "target_high_mm": 70}
		}],
		"forecasts": {"a": [{"rain_mm": 0, "et0_mm": 3}, {"rain_mm": 2, "et0_mm": 3}]}
	}`
	req, err := Load(writeFile(t, "plan.json", content))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Parcels[0].Crop.Type != model.CropWheat {
		t.Fatalf("crop not parsed: %+v", req.Parcels[0].Crop)
	}
}

func TestLoadRejectsUnknownCrop(t *testing.T) {
	content := `
horizon_days: 1
daily_capacity_mm: 1
parcels:
  - id: a
    area_ha: 1
    soil: {wilting_mm: 0, field_capacity_mm: 50}
    crop: {type: kudzu, yield_scale: 1, target_low_mm: 10, target_high_mm: 20}
forecasts: {}
`
	if _, err := Load(writeFile(t, "plan.yaml", content)); err == nil {
		t.Fatalf("expected unknown crop error")
	}
}

func TestLoadRejectsInvalidRequest(t *testing.T) {
	content := `
horizon_days: 0
daily_capacity_mm: 5
parcels: []
forecasts: {}
`
	if _, err := Load(writeFile(t, "plan.yaml", content)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestDecodeJSONPayload(t *testing.T) {
	payload := []byte(`{"horizon_days":1,"daily_capacity_mm":2,
		"parcels":[{"id":"a","area_ha":1,
			"soil":{"wilting_mm":0,"field_capacity_mm":60},
			"crop":{"type":"rice","yield_scale":3,"target_low_mm":30,"target_high_mm":50}}],
		"forecasts":{"a":[{"rain_mm":0,"et0_mm":4}]}}`)
	req, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.Parcels[0].Crop.Type != model.CropRice {
		t.Fatalf("crop not parsed: %+v", req.Parcels[0].Crop)
	}
}
