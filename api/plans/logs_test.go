package plans

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldwise/aquaplan/core/planner/logging"
)

type memStore struct{ recs []logging.LogRecord }

func (m *memStore) Append(ctx context.Context, r logging.LogRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q logging.LogQuery) ([]logging.LogRecord, error) {
	var res []logging.LogRecord
	for _, r := range m.recs {
		if q.ParcelID != "" && !r.Involves(q.ParcelID) {
			continue
		}
		if q.Converged != nil && r.Converged != *q.Converged {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_AuthAndFilters(t *testing.T) {
	store := &memStore{}
	if err := store.Append(context.Background(), logging.LogRecord{
		ID:        "r1",
		Timestamp: time.Now(),
		Horizon:   3,
		Parcels:   []string{"north-7"},
		Converged: true,
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	h := NewLogHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/plans/logs?parcel_id=north-7", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record")
	}
	// unauthorized
	req = httptest.NewRequest("GET", "/api/plans/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestLogHandler_ConvergedFilter(t *testing.T) {
	store := &memStore{}
	_ = store.Append(context.Background(), logging.LogRecord{ID: "r1", Converged: true})
	_ = store.Append(context.Background(), logging.LogRecord{ID: "r2", Converged: false})
	h := NewLogHandler(store, "")

	req := httptest.NewRequest("GET", "/api/plans/logs?converged=false", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r2" {
		t.Fatalf("expected only the unconverged run, got %+v", out)
	}
}
