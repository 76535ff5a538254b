package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/fieldwise/aquaplan/core/metrics"
	"github.com/fieldwise/aquaplan/core/planner"
	"github.com/fieldwise/aquaplan/infra/logger"
	"github.com/fieldwise/aquaplan/infra/metrics"
)

const capSlackMM = 1e-9

// RunScenario executes one acceptance scenario end to end and checks every
// expectation it declares. Daily capacity is always verified.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	req, err := sc.Plan.ToRequest()
	require.NoError(t, err, "scenario request")

	reg := prometheus.NewRegistry()
	planner.ResetMetrics(reg)
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	require.NoError(t, err)

	cfg := planner.Config{
		PriceMode:     sc.PriceMode,
		MaxIterations: sc.MaxIterations,
		LPReduction:   sc.LPReduction,
	}
	cfg.SetDefaults()

	pl, err := planner.New(cfg, logger.NopLogger{}, sink, nil)
	require.NoError(t, err)
	defer func() { _ = pl.Close() }()

	schedule, err := pl.Plan(context.Background(), req)
	require.NoError(t, err, "plan run")

	caps := req.CapacitySeries()
	require.Len(t, schedule.DailyTotalsMM, req.Horizon)
	for day, total := range schedule.DailyTotalsMM {
		require.LessOrEqualf(t, total, caps[day]+capSlackMM,
			"day %d total %.3f mm exceeds capacity %.3f mm", day, total, caps[day])
	}

	exp := sc.Expected
	if exp.Converged != nil {
		require.Equal(t, *exp.Converged, schedule.Diagnostics.Converged, "convergence")
	}
	if exp.MaxWaterUsedMM > 0 {
		require.LessOrEqual(t, schedule.WaterUsedMM, exp.MaxWaterUsedMM+capSlackMM, "water used")
	}
	for id, r := range exp.FinalMoistureMM {
		ps, ok := schedule.Parcel(id)
		require.Truef(t, ok, "parcel %s missing from schedule", id)
		final := ps.Entries[len(ps.Entries)-1].MoistureMM
		require.GreaterOrEqualf(t, final, r.Min, "parcel %s final moisture below %.1f mm", id, r.Min)
		require.LessOrEqualf(t, final, r.Max, "parcel %s final moisture above %.1f mm", id, r.Max)
	}
	for _, group := range exp.EqualParcels {
		require.GreaterOrEqual(t, len(group), 2, "equal_parcels group needs two parcels")
		first, ok := schedule.Parcel(group[0])
		require.Truef(t, ok, "parcel %s missing from schedule", group[0])
		for _, id := range group[1:] {
			ps, ok := schedule.Parcel(id)
			require.Truef(t, ok, "parcel %s missing from schedule", id)
			require.Len(t, ps.Entries, len(first.Entries))
			for day := range ps.Entries {
				require.InDeltaf(t, first.Entries[day].AppliedMM, ps.Entries[day].AppliedMM, capSlackMM,
					"parcels %s and %s differ on day %d", group[0], id, day)
			}
		}
	}
	for _, id := range exp.ExcludedParcels {
		_, ok := schedule.Parcel(id)
		require.Falsef(t, ok, "parcel %s should be excluded", id)
	}
	for _, id := range exp.FullFirstDay {
		ps, ok := schedule.Parcel(id)
		require.Truef(t, ok, "parcel %s missing from schedule", id)
		var max float64
		for _, p := range req.Parcels {
			if p.ID == id {
				max = p.MaxDailyMM
			}
		}
		require.NotEmpty(t, ps.Entries)
		require.InDeltaf(t, max, ps.Entries[0].AppliedMM, capSlackMM,
			"parcel %s should receive its daily maximum on day 0", id)
	}
}
