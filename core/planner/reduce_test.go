package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/fieldwise/aquaplan/core/model"
)

func TestReduceEmitsRoundingLossNotice(t *testing.T) {
	parcels := []model.Parcel{rampParcel("a", 20), rampParcel("b", 20)}
	req := flatRequest(parcels, 3, 4, 2)
	s, err := newTestPlanner(t, Config{MaxIterations: 5}).Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if !s.HasNotice(model.NoticeCapacityRoundingLoss) {
		t.Fatalf("expected a CapacityRoundingLoss notice when demand is trimmed")
	}
}

func TestLPReductionRespectsCapacity(t *testing.T) {
	parcels := []model.Parcel{rampParcel("a", 20), rampParcel("b", 20), rampParcel("c", 30)}
	req := flatRequest(parcels, 4, 7, 2)
	s, err := newTestPlanner(t, Config{LPReduction: true, MaxIterations: 10}).Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for day, tot := range s.DailyTotalsMM {
		if tot > 7+capSlack {
			t.Fatalf("day %d: capacity exceeded under lp reduction: %v", day, tot)
		}
	}
}

func TestLPReductionFallsBackToGreedy(t *testing.T) {
	orig := lpSolve
	lpSolve = func(worth, bounds []float64, cap float64) ([]float64, error) {
		return nil, errors.New("simulated solver failure")
	}
	defer func() { lpSolve = orig }()

	parcels := []model.Parcel{rampParcel("a", 20), rampParcel("b", 20)}
	req := flatRequest(parcels, 3, 4, 2)
	s, err := newTestPlanner(t, Config{LPReduction: true, MaxIterations: 5}).Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for day, tot := range s.DailyTotalsMM {
		if tot > 4+capSlack {
			t.Fatalf("day %d: greedy fallback did not enforce capacity: %v", day, tot)
		}
	}
}

func TestReduceBoundedLossPerDay(t *testing.T) {
	// The trim on any day can never exceed what was planned for that day.
	parcels := []model.Parcel{rampParcel("a", 10), rampParcel("b", 15)}
	req := flatRequest(parcels, 5, 4, 2)
	s, err := newTestPlanner(t, Config{MaxIterations: 10}).Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for day, tot := range s.DailyTotalsMM {
		if tot < 0 {
			t.Fatalf("day %d: negative aggregate %v", day, tot)
		}
		if tot > 4+capSlack {
			t.Fatalf("day %d: aggregate %v exceeds capacity", day, tot)
		}
	}
}
