package collector

import (
	"math"
	"strconv"
	"strings"
	"time"

	"MarketInsights/internal/model"
)

// NormalizeStats counts what Normalize kept and dropped.
type NormalizeStats struct {
	Kept          int
	MissingValue  int
	DuplicateDate int
}

// Normalize converts raw observations into a SeriesTable.
// Values that do not parse to a finite number are dropped before their date is
// looked at; a retained row with a bad date fails the whole call.
func Normalize(seriesID string, raw []model.RawObservation) (*model.SeriesTable, error) {
	table, _, err := NormalizeWithStats(seriesID, raw)
	return table, err
}

// NormalizeWithStats is Normalize that also reports drop counts.
func NormalizeWithStats(seriesID string, raw []model.RawObservation) (*model.SeriesTable, NormalizeStats, error) {
	var stats NormalizeStats
	obs := make([]model.Observation, 0, len(raw))
	seen := make(map[time.Time]struct{}, len(raw))

	for i, r := range raw {
		v, ok := parseValue(r.Value)
		if !ok {
			stats.MissingValue++
			continue
		}
		d, err := time.Parse(model.DateLayout, strings.TrimSpace(r.Date))
		if err != nil {
			return nil, stats, &MalformedDateError{Index: i, Date: r.Date, Err: err}
		}
		if _, dup := seen[d]; dup {
			stats.DuplicateDate++
			continue
		}
		seen[d] = struct{}{}
		obs = append(obs, model.Observation{Date: d, Value: v})
	}

	stats.Kept = len(obs)
	return model.NewSeriesTable(seriesID, obs), stats, nil
}

// parseValue returns false for missing-data markers and anything non-finite.
func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
