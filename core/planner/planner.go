package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fieldwise/aquaplan/core/events"
	"github.com/fieldwise/aquaplan/core/logger"
	"github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/model"
	"github.com/fieldwise/aquaplan/core/planner/logging"
	"github.com/fieldwise/aquaplan/core/solver"
	"github.com/fieldwise/aquaplan/internal/eventbus"
)

// ErrNoUsableParcels is returned when every parcel of a request failed
// validation and nothing is left to plan.
var ErrNoUsableParcels = errors.New("no usable parcels in request")

// Planner coordinates per-parcel solves through a shared shadow price so the
// aggregate daily demand meets the source capacity. The dual-ascent loop is
// sequential; within an iteration parcel solves run in parallel and join at
// a barrier before the price moves.
type Planner struct {
	cfg  Config
	log  logger.Logger
	sink metrics.MetricsSink
	bus  eventbus.EventBus

	mu    sync.Mutex
	store logging.LogStore
}

// New creates a Planner. The sink and bus may be nil.
func New(cfg Config, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) (*Planner, error) {
	if log == nil {
		return nil, fmt.Errorf("planner: nil logger provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Planner{cfg: cfg, log: log, sink: sink, bus: bus}, nil
}

// SetLogStore configures the store used to persist plan run records.
func (p *Planner) SetLogStore(store logging.LogStore) {
	p.mu.Lock()
	p.store = store
	p.mu.Unlock()
}

// Close releases resources held by the planner.
func (p *Planner) Close() error {
	if p.bus != nil {
		p.bus.Close()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// parcelInput pairs a validated parcel with its forecast.
type parcelInput struct {
	parcel   model.Parcel
	forecast model.Forecast
}

// Plan computes the irrigation schedule for the request. The context
// deadline is observed at iteration barriers: on expiry the best price found
// so far is used and the schedule is flagged DidNotConverge. Per-parcel
// failures become notices and never abort the remaining parcels.
func (p *Planner) Plan(ctx context.Context, req model.PlanRequest) (model.Schedule, error) {
	if err := req.Validate(); err != nil {
		return model.Schedule{}, err
	}
	runID := uuid.NewString()
	started := time.Now()

	inputs, notices := p.screen(req)
	if len(inputs) == 0 {
		return model.Schedule{}, fmt.Errorf("%w: %d parcels rejected", ErrNoUsableParcels, len(notices))
	}
	if p.bus != nil {
		p.bus.Publish(events.PlanStartedEvent{RunID: runID, Parcels: len(inputs), Horizon: req.Horizon})
	}
	p.log.Infof("planning %d parcels over %d days", len(inputs), req.Horizon)

	caps := req.CapacitySeries()
	totalCap := sum(caps)
	sol := solver.Solver{
		MoistureStepMM:   p.cfg.MoistureStepMM,
		AllocationStepMM: p.cfg.AllocationStepMM,
		MaxAllocationMM:  maxOf(caps),
	}

	prices := newPriceVector(p.cfg.PriceMode, req.Horizon)
	best := prices.clone()
	bestGap := math.Inf(1)
	converged := false
	iterations := 0

	for k := 1; k <= p.cfg.MaxIterations; k++ {
		iterations = k
		solutions, solveNotices := p.solveAll(sol, inputs, prices.series(req.Horizon))
		notices = append(notices, solveNotices...)

		demand := aggregateDemand(req.Horizon, inputs, solutions)
		gapMM := prices.gap(demand, caps)
		if gapMM < bestGap {
			bestGap = gapMM
			best = prices.clone()
		}
		p.publishIteration(runID, k, prices, demand, gapMM)

		if totalCap > 0 && gapMM <= p.cfg.Tolerance*totalCap {
			converged = true
			break
		}
		if ctx.Err() != nil {
			p.log.Warnf("deadline hit after iteration %d, using best price so far", k)
			break
		}
		prices.ascend(p.cfg.Step0/math.Sqrt(float64(k)), demand, caps)
	}
	if !converged {
		notices = append(notices, model.Notice{
			Code: model.NoticeDidNotConverge, Day: -1,
			Detail: fmt.Sprintf("gap %.3f mm after %d iterations", bestGap, iterations),
		})
	}

	// Resolve at the accepted price, then reconcile daily capacity.
	finalSolutions, finalNotices := p.solveAll(sol, inputs, best.series(req.Horizon))
	notices = append(notices, finalNotices...)
	red := p.reduce(runID, inputs, finalSolutions, caps)
	notices = append(notices, red.notices...)

	diag := model.Diagnostics{
		Converged:    converged,
		Iterations:   iterations,
		DualityGapMM: bestGap,
		FinalPriceMM: best.mean(),
	}
	if p.cfg.PriceMode == PriceModeDaily {
		diag.FinalPricesMM = best.series(req.Horizon)
	}
	diag.Notices = sortNotices(notices)

	schedule := assemble(req, inputs, finalSolutions, red, diag)
	p.record(runID, started, req, schedule)
	if p.bus != nil {
		for _, n := range diag.Notices {
			p.bus.Publish(events.ParcelNoticeEvent{RunID: runID, Notice: n})
		}
		p.bus.Publish(events.PlanCompletedEvent{
			RunID:       runID,
			Converged:   converged,
			Iterations:  iterations,
			Objective:   schedule.TotalObjective,
			WaterUsedMM: schedule.WaterUsedMM,
		})
	}
	return schedule, nil
}

// screen validates parcels and resolves forecasts, turning failures into
// notices so one bad parcel does not reject the request.
func (p *Planner) screen(req model.PlanRequest) ([]parcelInput, []model.Notice) {
	var inputs []parcelInput
	var notices []model.Notice
	for _, parcel := range req.Parcels {
		if err := parcel.Validate(); err != nil {
			p.log.Warnf("parcel %s rejected: %v", parcel.ID, err)
			notices = append(notices, model.Notice{
				Code: model.NoticeMalformedParcel, ParcelID: parcel.ID, Day: -1, Detail: err.Error(),
			})
			continue
		}
		forecast, ok := req.ForecastFor(parcel)
		if !ok || !forecast.Covers(req.Horizon) {
			p.log.Warnf("parcel %s rejected: forecast %q does not cover %d days",
				parcel.ID, parcel.ForecastRegion(), req.Horizon)
			notices = append(notices, model.Notice{
				Code: model.NoticeIncompleteForecast, ParcelID: parcel.ID, Day: -1,
				Detail: fmt.Sprintf("forecast %q covers %d of %d days",
					parcel.ForecastRegion(), len(forecast.Days), req.Horizon),
			})
			continue
		}
		inputs = append(inputs, parcelInput{parcel: parcel, forecast: forecast})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].parcel.ID < inputs[j].parcel.ID })
	return inputs, notices
}

// solveAll runs one solve per parcel in parallel and joins at a barrier.
// Results land in an index-addressed slice so ordering stays deterministic.
func (p *Planner) solveAll(s solver.Solver, inputs []parcelInput, prices []float64) ([]*solver.Solution, []model.Notice) {
	solutions := make([]*solver.Solution, len(inputs))
	errs := make([]error, len(inputs))
	sem := make(chan struct{}, p.cfg.Workers)
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			in := inputs[i]
			solutions[i], errs[i] = s.Solve(in.parcel, in.forecast, len(prices), prices)
		}(i)
	}
	wg.Wait()

	var notices []model.Notice
	for i, err := range errs {
		if err != nil {
			// Screening should have caught this; surface it instead of
			// dropping the parcel silently.
			p.log.Errorf("solve failed for parcel %s: %v", inputs[i].parcel.ID, err)
			notices = append(notices, model.Notice{
				Code: model.NoticeMalformedParcel, ParcelID: inputs[i].parcel.ID, Day: -1, Detail: err.Error(),
			})
		}
	}
	return solutions, notices
}

// aggregateDemand sums the realized daily draws of all solved parcels.
func aggregateDemand(horizon int, inputs []parcelInput, solutions []*solver.Solution) []float64 {
	demand := make([]float64, horizon)
	for i, sol := range solutions {
		if sol == nil {
			continue
		}
		tr := sol.Trajectory(inputs[i].parcel.InitialMoistureMM)
		for t, a := range tr.Applied {
			demand[t] += a
		}
	}
	return demand
}

func (p *Planner) publishIteration(runID string, k int, prices *priceVector, demand []float64, gapMM float64) {
	iterationsTotal.Inc()
	dualityGapGauge.Set(gapMM)
	if p.bus != nil {
		p.bus.Publish(events.IterationEvent{
			RunID: runID, Iteration: k,
			PriceMM: prices.mean(), DemandMM: sum(demand), GapMM: gapMM,
		})
	}
	if rec, ok := p.sink.(metrics.IterationRecorder); ok {
		err := rec.RecordIteration(metrics.IterationRecord{
			RunID: runID, Iteration: k,
			PriceMM: prices.mean(), DemandMM: sum(demand), GapMM: gapMM, Time: time.Now(),
		})
		if err != nil {
			p.log.Errorf("iteration metrics error: %v", err)
		}
	}
	p.log.Debugw("iteration", map[string]any{
		"iteration": k, "price_mm": prices.mean(), "demand_mm": sum(demand), "gap_mm": gapMM,
	})
}

// record persists run metrics and the plan log entry.
func (p *Planner) record(runID string, started time.Time, req model.PlanRequest, s model.Schedule) {
	planRuns.WithLabelValues(fmt.Sprintf("%t", s.Diagnostics.Converged)).Inc()
	planDuration.Observe(time.Since(started).Seconds())

	recs := make([]metrics.AllocationRecord, 0, len(s.Parcels)*s.Horizon)
	now := time.Now()
	for _, ps := range s.Parcels {
		var crop model.CropType
		for _, parcel := range req.Parcels {
			if parcel.ID == ps.ParcelID {
				crop = parcel.Crop.Type
				break
			}
		}
		for _, e := range ps.Entries {
			recs = append(recs, metrics.AllocationRecord{
				RunID: runID, ParcelID: ps.ParcelID, Crop: crop,
				Day: e.Day, AppliedMM: e.AppliedMM, MoistureMM: e.MoistureMM, Time: now,
			})
		}
	}
	if err := p.sink.RecordAllocations(recs); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
	if rec, ok := p.sink.(metrics.PlanSummaryRecorder); ok {
		err := rec.RecordPlanSummary(metrics.PlanSummary{
			RunID: runID, Parcels: len(s.Parcels), Horizon: s.Horizon,
			Converged: s.Diagnostics.Converged, Iterations: s.Diagnostics.Iterations,
			GapMM: s.Diagnostics.DualityGapMM, PriceMM: s.Diagnostics.FinalPriceMM,
			Objective: s.TotalObjective, WaterUsedMM: s.WaterUsedMM, WaterM3: s.WaterUsedM3,
			Time: now,
		})
		if err != nil {
			p.log.Errorf("summary metrics error: %v", err)
		}
	}
	if rec, ok := p.sink.(metrics.NoticeRecorder); ok {
		for _, n := range s.Diagnostics.Notices {
			if err := rec.RecordNotice(n); err != nil {
				p.log.Errorf("notice metrics error: %v", err)
			}
		}
	}

	p.mu.Lock()
	store := p.store
	p.mu.Unlock()
	if store == nil {
		return
	}
	ids := make([]string, 0, len(s.Parcels))
	for _, ps := range s.Parcels {
		ids = append(ids, ps.ParcelID)
	}
	err := store.Append(context.Background(), logging.LogRecord{
		ID:          runID,
		Timestamp:   started,
		Horizon:     s.Horizon,
		Parcels:     ids,
		CapacityMM:  req.TotalCapacityMM(),
		Converged:   s.Diagnostics.Converged,
		Iterations:  s.Diagnostics.Iterations,
		GapMM:       s.Diagnostics.DualityGapMM,
		PriceMM:     s.Diagnostics.FinalPriceMM,
		Objective:   s.TotalObjective,
		WaterUsedMM: s.WaterUsedMM,
		Notices:     s.Diagnostics.Notices,
	})
	if err != nil {
		p.log.Errorf("plan log append error: %v", err)
	}
}

// sortNotices orders notices by parcel then day then code so diagnostics are
// stable across runs.
func sortNotices(ns []model.Notice) []model.Notice {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].ParcelID != ns[j].ParcelID {
			return ns[i].ParcelID < ns[j].ParcelID
		}
		if ns[i].Day != ns[j].Day {
			return ns[i].Day < ns[j].Day
		}
		return ns[i].Code < ns[j].Code
	})
	return ns
}

func maxOf(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
