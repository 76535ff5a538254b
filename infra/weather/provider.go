package weather

import (
	"context"

	"github.com/fieldwise/aquaplan/core/model"
)

// Provider fetches a daily forecast for a region. Implementations must
// return at least the requested number of days or an error.
type Provider interface {
	Forecast(ctx context.Context, region string, days int) (model.Forecast, error)
}

// Location ties a forecast region to coordinates for HTTP providers.
type Location struct {
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
}
