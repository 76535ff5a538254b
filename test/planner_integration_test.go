package test

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldwise/aquaplan/core/planner"
	"github.com/fieldwise/aquaplan/core/planner/logging"
	"github.com/fieldwise/aquaplan/infra/logger"
	"github.com/fieldwise/aquaplan/infra/planfile"
)

// TestPlanFromPlanfile runs a full planning cycle from an on-disk planfile
// through the planner into a persisted run log, the way the service does.
func TestPlanFromPlanfile(t *testing.T) {
	req, err := planfile.Load(filepath.Join("testdata", "week.yaml"))
	require.NoError(t, err)

	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "plans.log"))
	require.NoError(t, err)

	cfg := planner.Config{MaxIterations: 50}
	cfg.SetDefaults()
	pl, err := planner.New(cfg, logger.NopLogger{}, nil, nil)
	require.NoError(t, err)
	pl.SetLogStore(store)
	defer func() { _ = pl.Close() }()

	s, err := pl.Plan(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, s.Parcels, 2)
	caps := req.CapacitySeries()
	for day, total := range s.DailyTotalsMM {
		require.LessOrEqualf(t, total, caps[day]+1e-9, "day %d over capacity", day)
	}
	for _, ps := range s.Parcels {
		require.Len(t, ps.Entries, req.Horizon)
		for _, e := range ps.Entries {
			require.GreaterOrEqual(t, e.MoistureMM, 0.0)
			require.LessOrEqual(t, e.MoistureMM, 100.0)
		}
	}

	records, err := store.Query(context.Background(), logging.LogQuery{
		Start: time.Now().Add(-time.Minute),
		End:   time.Now().Add(time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.ElementsMatch(t, []string{"north-field", "south-field"}, records[0].Parcels)
	require.InDelta(t, s.WaterUsedMM, records[0].WaterUsedMM, 1e-9)

	byParcel, err := store.Query(context.Background(), logging.LogQuery{ParcelID: "north-field"})
	require.NoError(t, err)
	require.Len(t, byParcel, 1)
}

// TestPlanfileRunsAreReproducible checks that two runs over the same file
// produce byte-identical schedules.
func TestPlanfileRunsAreReproducible(t *testing.T) {
	req, err := planfile.Load(filepath.Join("testdata", "week.yaml"))
	require.NoError(t, err)

	cfg := planner.Config{MaxIterations: 50}
	cfg.SetDefaults()
	pl, err := planner.New(cfg, logger.NopLogger{}, nil, nil)
	require.NoError(t, err)
	defer func() { _ = pl.Close() }()

	first, err := pl.Plan(context.Background(), req)
	require.NoError(t, err)
	second, err := pl.Plan(context.Background(), req)
	require.NoError(t, err)
	require.True(t, reflect.DeepEqual(first, second), "identical inputs diverged")
}
