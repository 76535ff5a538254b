package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/infra/logger"
)

// hargreavesRa is the simplified radiation constant converting the Hargreaves
// estimate into mm/day.
const hargreavesRa = 0.408

type owmDaily struct {
	Dt   int64 `json:"dt"`
	Temp struct {
		Min float64 `json:"min"`
		Max float64 `json:"max"`
	} `json:"temp"`
	Humidity float64 `json:"humidity"`
	Rain     float64 `json:"rain"`
}

type owmResp struct {
	Daily []owmDaily `json:"daily"`
}

// OWMConfig configures the OpenWeather-style provider.
type OWMConfig struct {
	BaseURL   string     `json:"base_url"`
	APIKey    string     `json:"api_key"`
	Locations []Location `json:"locations"`
	// Circuit breaker tuning. Zero values use the defaults below.
	CBFails      int `json:"cb_fails"`
	CBOpenMs     int `json:"cb_open_ms"`
	CBIntervalMs int `json:"cb_interval_ms"`
}

// OWMProvider derives daily ET0 via the simplified Hargreaves equation from
// an OpenWeather-style one-call API. Requests are retried with exponential
// backoff and guarded by a circuit breaker so a flapping upstream cannot
// stall planning.
type OWMProvider struct {
	cfg     OWMConfig
	client  *http.Client
	cb      *gobreaker.CircuitBreaker
	log     logger.Logger
	regions map[string]Location
}

// NewOWMProvider creates a provider for the configured locations.
func NewOWMProvider(cfg OWMConfig) (*OWMProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing api key")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/3.0/onecall"
	}
	fails := cfg.CBFails
	if fails <= 0 {
		fails = 3
	}
	openMs := cfg.CBOpenMs
	if openMs <= 0 {
		openMs = 30000
	}
	intervalMs := cfg.CBIntervalMs
	if intervalMs <= 0 {
		intervalMs = 60000
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "weather-provider",
		Interval: time.Duration(intervalMs) * time.Millisecond,
		Timeout:  time.Duration(openMs) * time.Millisecond,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
	regions := make(map[string]Location, len(cfg.Locations))
	for _, loc := range cfg.Locations {
		regions[loc.Region] = loc
	}
	return &OWMProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		cb:      cb,
		log:     logger.New("weather"),
		regions: regions,
	}, nil
}

// Forecast fetches the daily series for the region and maps it onto the
// planner's weather model.
func (p *OWMProvider) Forecast(ctx context.Context, region string, days int) (model.Forecast, error) {
	loc, ok := p.regions[region]
	if !ok {
		return model.Forecast{}, fmt.Errorf("unknown region %q", region)
	}
	var out owmResp
	fetch := func() error {
		raw, err := p.cb.Execute(func() (interface{}, error) {
			return p.fetchOnce(ctx, loc)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}
		out = raw.(owmResp)
		return nil
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(fetch, bo); err != nil {
		return model.Forecast{}, fmt.Errorf("weather fetch for %s: %w", region, err)
	}
	if len(out.Daily) < days {
		return model.Forecast{}, fmt.Errorf("weather for %s covers %d of %d days: %w",
			region, len(out.Daily), days, model.ErrIncompleteForecast)
	}

	f := model.Forecast{Region: region, Days: make([]model.DailyWeather, days)}
	for i, d := range out.Daily[:days] {
		f.Days[i] = model.DailyWeather{
			RainMM:      d.Rain,
			ET0MM:       etoHargreaves(d.Temp.Min, d.Temp.Max, hargreavesRa),
			TempMeanC:   (d.Temp.Min + d.Temp.Max) / 2,
			HumidityPct: d.Humidity,
		}
	}
	return f, nil
}

func (p *OWMProvider) fetchOnce(ctx context.Context, loc Location) (owmResp, error) {
	url := fmt.Sprintf("%s?lat=%f&lon=%f&exclude=current,minutely,hourly,alerts&units=metric&appid=%s",
		p.cfg.BaseURL, loc.Lat, loc.Lon, p.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return owmResp{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return owmResp{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return owmResp{}, fmt.Errorf("weather api status %d: %s", resp.StatusCode, string(b))
	}
	var out owmResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return owmResp{}, err
	}
	if len(out.Daily) == 0 {
		return owmResp{}, fmt.Errorf("no daily data")
	}
	return out, nil
}

// etoHargreaves is the simplified Hargreaves reference evapotranspiration in
// mm/day.
func etoHargreaves(tmin, tmax, ra float64) float64 {
	tmean := (tmin + tmax) / 2.0
	return 0.0023 * (tmean + 17.8) * math.Sqrt(math.Max(tmax-tmin, 0)) * ra
}
