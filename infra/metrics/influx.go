package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/infra/logger"
)

// InfluxSink writes planning results to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocations writes one point per scheduled parcel-day.
func (s *InfluxSink) RecordAllocations(recs []coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range recs {
		p := write.NewPointWithMeasurement("irrigation_allocation").
			AddTag("parcel_id", r.ParcelID).
			AddTag("crop", r.Crop.String()).
			AddTag("run_id", r.RunID).
			AddTag("reduced", strconv.FormatBool(r.Reduced)).
			AddTag("component", "planner").
			AddField("day", r.Day).
			AddField("applied_mm", round3(r.AppliedMM)).
			AddField("moisture_mm", round3(r.MoistureMM)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordPlanSummary persists the run-level outcome.
func (s *InfluxSink) RecordPlanSummary(sum coremetrics.PlanSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_run").
		AddTag("run_id", sum.RunID).
		AddTag("converged", strconv.FormatBool(sum.Converged)).
		AddTag("component", "planner").
		AddField("parcels", sum.Parcels).
		AddField("horizon_days", sum.Horizon).
		AddField("iterations", sum.Iterations).
		AddField("gap_mm", round3(sum.GapMM)).
		AddField("price_mm", round3(sum.PriceMM)).
		AddField("objective", round3(sum.Objective)).
		AddField("water_used_mm", round3(sum.WaterUsedMM)).
		AddField("water_m3", round3(sum.WaterM3)).
		SetTime(sum.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordIteration persists one dual-ascent step.
func (s *InfluxSink) RecordIteration(rec coremetrics.IterationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("coordinator_iteration").
		AddTag("run_id", rec.RunID).
		AddTag("component", "planner").
		AddField("iteration", rec.Iteration).
		AddField("price_mm", round3(rec.PriceMM)).
		AddField("demand_mm", round3(rec.DemandMM)).
		AddField("gap_mm", round3(rec.GapMM)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordNotice persists a planning diagnostic.
func (s *InfluxSink) RecordNotice(n model.Notice) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("plan_notice").
		AddTag("code", n.Code.String()).
		AddTag("component", "planner")
	if n.ParcelID != "" {
		p = p.AddTag("parcel_id", n.ParcelID)
	}
	p = p.AddField("day", n.Day).
		AddField("detail", n.Detail).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
