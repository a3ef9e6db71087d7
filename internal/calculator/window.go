package calculator

import (
	"time"

	"MarketInsights/internal/model"
)

// FilterWindow returns the observations whose calendar date lies in [start, end].
// Input order is kept and the source table is not modified.
func FilterWindow(table *model.SeriesTable, start, end time.Time) *model.SeriesTable {
	lo, hi := model.DateOnly(start), model.DateOnly(end)
	kept := make([]model.Observation, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		o := table.At(i)
		d := model.DateOnly(o.Date)
		if d.Before(lo) || d.After(hi) {
			continue
		}
		kept = append(kept, o)
	}
	return model.NewSeriesTable(table.SeriesID(), kept)
}

// Bounds returns the first and last dates of a table, or false when it is empty.
func Bounds(table *model.SeriesTable) (start, end time.Time, ok bool) {
	first, ok := table.First()
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	last, _ := table.Last()
	return first.Date, last.Date, true
}
