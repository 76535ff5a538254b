package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fieldwise/aquaplan/core/model"
)

func sampleSchedule() model.Schedule {
	return model.Schedule{
		Horizon: 2,
		Parcels: []model.ParcelSchedule{
			{
				ParcelID: "a",
				Entries: []model.ScheduleEntry{
					{Day: 0, AppliedMM: 5, MoistureMM: 47},
					{Day: 1, AppliedMM: 2.5, MoistureMM: 48.5},
				},
				WaterMM: 7.5,
			},
		},
		WaterUsedMM:   7.5,
		DailyTotalsMM: []float64{5, 2.5},
	}
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleSchedule()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out model.Schedule
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.WaterUsedMM != 7.5 || len(out.Parcels) != 1 {
		t.Fatalf("unexpected round trip: %+v", out)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleSchedule()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "parcel_id,day,applied_mm,moisture_mm" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[2] != "a,1,2.5,48.5" {
		t.Fatalf("unexpected row: %s", lines[2])
	}
}
