package config

import (
	"fmt"

	"github.com/fieldwise/aquaplan/infra/weather"
)

// WeatherConfig selects and configures the forecast provider.
type WeatherConfig struct {
	// Mode selects the provider: "none", "openweather" or "generator".
	Mode      string                  `json:"mode"`
	OWM       weather.OWMConfig       `json:"openweather"`
	Generator weather.GeneratorConfig `json:"generator"`
}

// SetDefaults applies sane defaults.
func (c *WeatherConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "none"
	}
}

// Validate checks the provider selection.
func (c WeatherConfig) Validate() error {
	switch c.Mode {
	case "none", "generator":
		return nil
	case "openweather":
		if c.OWM.APIKey == "" {
			return fmt.Errorf("openweather mode requires an api key")
		}
		return nil
	default:
		return fmt.Errorf("unknown weather mode %s", c.Mode)
	}
}
