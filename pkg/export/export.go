package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/fieldwise/aquaplan/core/model"
)

// WriteJSON writes the full schedule to w in JSON format.
func WriteJSON(w io.Writer, s model.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes the per-parcel daily allocations to w in CSV format.
func WriteCSV(w io.Writer, s model.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"parcel_id", "day", "applied_mm", "moisture_mm"}); err != nil {
		return err
	}
	for _, ps := range s.Parcels {
		for _, e := range ps.Entries {
			rec := []string{
				ps.ParcelID,
				strconv.Itoa(e.Day),
				strconv.FormatFloat(e.AppliedMM, 'f', -1, 64),
				strconv.FormatFloat(e.MoistureMM, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
