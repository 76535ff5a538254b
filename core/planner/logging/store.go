package logging

import (
	"context"
	"time"

	"github.com/fieldwise/aquaplan/core/model"
)

// LogRecord captures one planning run and its outcome.
type LogRecord struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Horizon     int            `json:"horizon"`
	Parcels     []string       `json:"parcels"`
	CapacityMM  float64        `json:"capacity_mm"`
	Converged   bool           `json:"converged"`
	Iterations  int            `json:"iterations"`
	GapMM       float64        `json:"gap_mm"`
	PriceMM     float64        `json:"price_mm"`
	Objective   float64        `json:"objective"`
	WaterUsedMM float64        `json:"water_used_mm"`
	Notices     []model.Notice `json:"notices,omitempty"`
}

// Involves reports whether the run planned the given parcel.
func (r LogRecord) Involves(parcelID string) bool {
	for _, id := range r.Parcels {
		if id == parcelID {
			return true
		}
	}
	return false
}

// LogQuery defines filters for retrieving records.
type LogQuery struct {
	Start    time.Time
	End      time.Time
	ParcelID string
	// Converged filters by outcome when non-nil.
	Converged *bool
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// matches applies the in-memory filters shared by the file-backed stores.
func (q LogQuery) matches(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Converged != nil && r.Converged != *q.Converged {
		return false
	}
	if q.ParcelID != "" && !r.Involves(q.ParcelID) {
		return false
	}
	return true
}
