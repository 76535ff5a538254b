package planfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fieldwise/aquaplan/core/model"
)

// ParcelDef is the on-disk shape of a parcel.
type ParcelDef struct {
	ID                string  `yaml:"id" json:"id"`
	Name              string  `yaml:"name,omitempty" json:"name,omitempty"`
	AreaHa            float64 `yaml:"area_ha" json:"area_ha"`
	Region            string  `yaml:"region,omitempty" json:"region,omitempty"`
	InitialMoistureMM float64 `yaml:"initial_moisture_mm" json:"initial_moisture_mm"`
	MaxDailyMM        float64 `yaml:"max_daily_mm,omitempty" json:"max_daily_mm,omitempty"`

	Soil struct {
		WiltingMM       float64 `yaml:"wilting_mm" json:"wilting_mm"`
		FieldCapacityMM float64 `yaml:"field_capacity_mm" json:"field_capacity_mm"`
		DrainCoeff      float64 `yaml:"drain_coeff,omitempty" json:"drain_coeff,omitempty"`
	} `yaml:"soil" json:"soil"`

	Crop struct {
		Type            string  `yaml:"type" json:"type"`
		GrowthStage     int     `yaml:"growth_stage,omitempty" json:"growth_stage,omitempty"`
		YieldScale      float64 `yaml:"yield_scale" json:"yield_scale"`
		TargetLowMM     float64 `yaml:"target_low_mm" json:"target_low_mm"`
		TargetHighMM    float64 `yaml:"target_high_mm" json:"target_high_mm"`
		WaterlogPenalty float64 `yaml:"waterlog_penalty,omitempty" json:"waterlog_penalty,omitempty"`
		TerminalWeight  float64 `yaml:"terminal_weight,omitempty" json:"terminal_weight,omitempty"`
	} `yaml:"crop" json:"crop"`
}

// ToModel converts the definition to the planner's parcel type.
func (d ParcelDef) ToModel() (model.Parcel, error) {
	crop, ok := model.CropTypeFromString(d.Crop.Type)
	if !ok {
		return model.Parcel{}, fmt.Errorf("parcel %s: unknown crop %q", d.ID, d.Crop.Type)
	}
	return model.Parcel{
		ID:                d.ID,
		Name:              d.Name,
		AreaHa:            d.AreaHa,
		Region:            d.Region,
		InitialMoistureMM: d.InitialMoistureMM,
		MaxDailyMM:        d.MaxDailyMM,
		Soil: model.SoilProfile{
			WiltingMM:       d.Soil.WiltingMM,
			FieldCapacityMM: d.Soil.FieldCapacityMM,
			DrainCoeff:      d.Soil.DrainCoeff,
		},
		Crop: model.CropProfile{
			Type:            crop,
			GrowthStage:     d.Crop.GrowthStage,
			YieldScale:      d.Crop.YieldScale,
			TargetLowMM:     d.Crop.TargetLowMM,
			TargetHighMM:    d.Crop.TargetHighMM,
			WaterlogPenalty: d.Crop.WaterlogPenalty,
			TerminalWeight:  d.Crop.TerminalWeight,
		},
	}, nil
}

// DayDef is the on-disk shape of one forecast day.
type DayDef struct {
	RainMM      float64 `yaml:"rain_mm" json:"rain_mm"`
	ET0MM       float64 `yaml:"et0_mm" json:"et0_mm"`
	TempMeanC   float64 `yaml:"temp_mean_c,omitempty" json:"temp_mean_c,omitempty"`
	HumidityPct float64 `yaml:"humidity_pct,omitempty" json:"humidity_pct,omitempty"`
}

// PlanFile is the on-disk shape of a full planning request.
type PlanFile struct {
	HorizonDays     int                 `yaml:"horizon_days" json:"horizon_days"`
	DailyCapacityMM float64             `yaml:"daily_capacity_mm" json:"daily_capacity_mm"`
	CapacityProfile []float64           `yaml:"capacity_profile,omitempty" json:"capacity_profile,omitempty"`
	Parcels         []ParcelDef         `yaml:"parcels" json:"parcels"`
	Forecasts       map[string][]DayDef `yaml:"forecasts" json:"forecasts"`
}

// ToRequest converts the file to a validated PlanRequest.
func (f PlanFile) ToRequest() (model.PlanRequest, error) {
	req := model.PlanRequest{
		Horizon:         f.HorizonDays,
		DailyCapacityMM: f.DailyCapacityMM,
		CapacityProfile: f.CapacityProfile,
		Forecasts:       make(map[string]model.Forecast, len(f.Forecasts)),
	}
	for _, pd := range f.Parcels {
		p, err := pd.ToModel()
		if err != nil {
			return model.PlanRequest{}, err
		}
		req.Parcels = append(req.Parcels, p)
	}
	for region, days := range f.Forecasts {
		fc := model.Forecast{Region: region, Days: make([]model.DailyWeather, len(days))}
		for i, d := range days {
			fc.Days[i] = model.DailyWeather{
				RainMM:      d.RainMM,
				ET0MM:       d.ET0MM,
				TempMeanC:   d.TempMeanC,
				HumidityPct: d.HumidityPct,
			}
		}
		req.Forecasts[region] = fc
	}
	if err := req.Validate(); err != nil {
		return model.PlanRequest{}, err
	}
	return req, nil
}

// Load reads a planfile from disk, decoding YAML or JSON by extension.
func Load(path string) (model.PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PlanRequest{}, err
	}
	var pf PlanFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &pf)
	default:
		err = yaml.Unmarshal(data, &pf)
	}
	if err != nil {
		return model.PlanRequest{}, fmt.Errorf("decode planfile %s: %w", path, err)
	}
	return pf.ToRequest()
}

// Decode parses a raw YAML or JSON payload, as received over MQTT, into a
// PlanRequest. JSON payloads are valid YAML, so one decoder covers both.
func Decode(data []byte) (model.PlanRequest, error) {
	var pf PlanFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return model.PlanRequest{}, fmt.Errorf("decode plan request: %w", err)
	}
	return pf.ToRequest()
}
