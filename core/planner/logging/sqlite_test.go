package logging

import (
	"context"
	"testing"
	"time"
)

func TestSQLiteStore_PersistQuery(t *testing.T) {
	store, err := NewSQLiteStore("file:test.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if err := store.Append(context.Background(), sampleRecord("r1", time.Now(), true)); err != nil {
		t.Fatalf("append: %v", err)
	}
	out, err := store.Query(context.Background(), LogQuery{ParcelID: "p1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
}

func TestSQLiteStore_ConvergedFilter(t *testing.T) {
	store, err := NewSQLiteStore("file:test2.db?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	_ = store.Append(context.Background(), sampleRecord("r1", time.Now(), true))
	_ = store.Append(context.Background(), sampleRecord("r2", time.Now(), false))
	converged := false
	out, err := store.Query(context.Background(), LogQuery{Converged: &converged})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r2" {
		t.Fatalf("expected only the unconverged run, got %+v", out)
	}
}
