package model

import "testing"

func TestMoistureGridBuckets(t *testing.T) {
	g := NewMoistureGrid(SoilProfile{WiltingMM: 10, FieldCapacityMM: 60}, 1)
	if n := g.Buckets(); n != 51 {
		t.Fatalf("expected 51 buckets, got %d", n)
	}
	if lvl := g.Level(0); lvl != 10 {
		t.Fatalf("expected first level at wilting point, got %v", lvl)
	}
	if lvl := g.Level(50); lvl != 60 {
		t.Fatalf("expected last level at field capacity, got %v", lvl)
	}
}

func TestMoistureGridNearestBucket(t *testing.T) {
	g := NewMoistureGrid(SoilProfile{WiltingMM: 10, FieldCapacityMM: 60}, 1)
	if i := g.Bucket(12.4); i != 2 {
		t.Fatalf("expected bucket 2, got %d", i)
	}
	if i := g.Bucket(12.6); i != 3 {
		t.Fatalf("expected bucket 3, got %d", i)
	}
	if mm := g.Snap(12.6); mm != 13 {
		t.Fatalf("expected snap to 13, got %v", mm)
	}
}

func TestMoistureGridClampsOutOfRange(t *testing.T) {
	g := NewMoistureGrid(SoilProfile{WiltingMM: 10, FieldCapacityMM: 60}, 1)
	if i := g.Bucket(-5); i != 0 {
		t.Fatalf("expected clamp to first bucket, got %d", i)
	}
	if i := g.Bucket(500); i != 50 {
		t.Fatalf("expected clamp to last bucket, got %d", i)
	}
}

func TestMoistureGridUnevenRangePinsCapacity(t *testing.T) {
	g := NewMoistureGrid(SoilProfile{WiltingMM: 10, FieldCapacityMM: 15.5}, 1)
	if n := g.Buckets(); n != 7 {
		t.Fatalf("expected 7 buckets, got %d", n)
	}
	if lvl := g.Level(6); lvl != 15.5 {
		t.Fatalf("expected last level pinned to capacity, got %v", lvl)
	}
	if i := g.Bucket(15.5); i != 6 {
		t.Fatalf("expected capacity in last bucket, got %d", i)
	}
}

func TestNoticeCodeString(t *testing.T) {
	cases := map[NoticeCode]string{
		NoticeMalformedParcel:      "malformed_parcel",
		NoticeIncompleteForecast:   "incomplete_forecast",
		NoticeInfeasibleParcel:     "infeasible_parcel",
		NoticeDidNotConverge:       "did_not_converge",
		NoticeCapacityRoundingLoss: "capacity_rounding_loss",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
