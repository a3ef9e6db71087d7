package calculator

import (
	"errors"

	"MarketInsights/internal/model"
)

// ErrInvalidPeriod is returned for a non-positive moving-average period.
var ErrInvalidPeriod = errors.New("period must be positive")

// MovingAverage returns the trailing SMA of table, one point per observation
// from index period-1 onward, dated like the observation it ends on.
// A table shorter than period yields an empty table.
func MovingAverage(table *model.SeriesTable, period int) (*model.SeriesTable, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	values := table.Values()
	if len(values) < period {
		return model.NewSeriesTable(table.SeriesID(), nil), nil
	}

	out := make([]model.Observation, 0, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out = append(out, model.Observation{
				Date:  table.At(i).Date,
				Value: sum / float64(period),
			})
		}
	}
	return model.NewSeriesTable(table.SeriesID(), out), nil
}
