package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fieldwise/aquaplan/api/plans"
	"github.com/fieldwise/aquaplan/config"
	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
	coremqtt "github.com/fieldwise/aquaplan/core/mqtt"
	"github.com/fieldwise/aquaplan/core/planner"
	"github.com/fieldwise/aquaplan/core/planner/logging"
	"github.com/fieldwise/aquaplan/infra/logger"
	"github.com/fieldwise/aquaplan/infra/metrics"
	"github.com/fieldwise/aquaplan/infra/mqtt"
	"github.com/fieldwise/aquaplan/infra/planfile"
	"github.com/fieldwise/aquaplan/infra/weather"
	"github.com/fieldwise/aquaplan/internal/eventbus"
)

// Service wires the planner to its transports: MQTT plan requests in,
// irrigation orders and plan history out.
type Service struct {
	Planner *planner.Planner

	cfg     *config.Config
	client  *mqtt.PahoClient
	orders  coremqtt.Client
	weather weather.Provider
	store   logging.LogStore
	bus     eventbus.EventBus
	log     logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	client, err := mqtt.NewPahoClient(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store, err := newLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}

	bus := eventbus.New()
	pl, err := planner.New(cfg.Planner, logg, sink, bus)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	pl.SetLogStore(store)

	provider, err := newWeatherProvider(cfg.Weather)
	if err != nil {
		return nil, fmt.Errorf("weather provider: %w", err)
	}

	return &Service{
		Planner: pl,
		cfg:     cfg,
		client:  client,
		orders:  client,
		weather: provider,
		store:   store,
		bus:     bus,
		log:     logg,
	}, nil
}

func newLogStore(cfg config.LoggingConfig) (logging.LogStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return logging.NewSQLiteStore(cfg.Path)
	case "rotating":
		return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	default:
		return logging.NewJSONLStore(cfg.Path)
	}
}

func newWeatherProvider(cfg config.WeatherConfig) (weather.Provider, error) {
	switch cfg.Mode {
	case "openweather":
		return weather.NewOWMProvider(cfg.OWM)
	case "generator":
		return weather.NewGenerator(cfg.Generator), nil
	default:
		return nil, nil
	}
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Enabled {
		go s.serveAPI(ctx)
	}

	err := s.client.SubscribePlanRequests(s.cfg.Service.PlanRequestTopic, func(payload []byte) {
		go s.handlePlanRequest(ctx, payload)
	})
	if err != nil {
		return fmt.Errorf("subscribe plan requests: %w", err)
	}
	s.log.Infof("listening for plan requests on %s", s.cfg.Service.PlanRequestTopic)
	<-ctx.Done()
	return nil
}

func (s *Service) serveAPI(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/api/plans/logs", plans.NewLogHandler(s.store, s.cfg.API.Token))
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Errorf("api server: %v", err)
	}
}

func (s *Service) handlePlanRequest(ctx context.Context, payload []byte) {
	req, err := planfile.Decode(payload)
	if err != nil {
		s.log.Errorf("bad plan request: %v", err)
		return
	}
	s.fillForecasts(ctx, &req)

	planCtx := ctx
	if s.cfg.Service.PlanTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		planCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Service.PlanTimeoutSeconds)*time.Second)
		defer cancel()
	}
	schedule, err := s.Planner.Plan(planCtx, req)
	if err != nil {
		s.log.Errorf("plan failed: %v", err)
		return
	}
	s.log.Infof("plan complete: %d parcels, %.1f mm, converged=%t",
		len(schedule.Parcels), schedule.WaterUsedMM, schedule.Diagnostics.Converged)

	if s.cfg.Service.DispatchOrders {
		s.dispatchDayZero(schedule)
	}
}

// fillForecasts fetches forecasts from the weather provider for parcels whose
// region is missing from the request. Fetch failures are left to surface as
// IncompleteForecast notices during planning.
func (s *Service) fillForecasts(ctx context.Context, req *model.PlanRequest) {
	if s.weather == nil {
		return
	}
	if req.Forecasts == nil {
		req.Forecasts = make(map[string]model.Forecast)
	}
	for _, parcel := range req.Parcels {
		region := parcel.ForecastRegion()
		if f, ok := req.Forecasts[region]; ok && f.Covers(req.Horizon) {
			continue
		}
		f, err := s.weather.Forecast(ctx, region, req.Horizon)
		if err != nil {
			s.log.Warnf("forecast fetch for %s: %v", region, err)
			continue
		}
		req.Forecasts[region] = f
	}
}

// dispatchDayZero sends each parcel's first-day order and collects the
// acknowledgments concurrently.
func (s *Service) dispatchDayZero(schedule model.Schedule) {
	ackTimeout := time.Duration(s.cfg.Service.AckTimeoutSeconds) * time.Second
	var wg sync.WaitGroup
	for _, ps := range schedule.Parcels {
		if len(ps.Entries) == 0 || ps.Entries[0].AppliedMM <= 0 {
			continue
		}
		wg.Add(1)
		go func(id string, depth float64) {
			defer wg.Done()
			cmdID, err := s.orders.SendOrder(id, 0, depth)
			if err != nil {
				s.log.Errorf("order for %s failed: %v", id, err)
				return
			}
			acked, err := s.orders.WaitForAck(cmdID, ackTimeout)
			if err != nil || !acked {
				s.log.Warnf("order %s for %s not acknowledged: %v", cmdID, id, err)
				return
			}
			s.log.Infof("parcel %s acknowledged %.1f mm", id, depth)
		}(ps.ParcelID, ps.Entries[0].AppliedMM)
	}
	wg.Wait()
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.client.Disconnect()
	return s.Planner.Close()
}
