package calculator

import (
	"errors"
	"math"
	"time"

	"MarketInsights/internal/model"
)

var (
	// ErrEmptyWindow means the selected range holds no observations.
	ErrEmptyWindow = errors.New("no observations in window")
	// ErrDivisionByZero means the percent-change base is zero.
	ErrDivisionByZero = errors.New("percent change base is zero")
)

// ComputeMetrics filters table to [start, end] and summarizes the result.
// A zero first value leaves PercentChange nil and the trend undefined.
func ComputeMetrics(table *model.SeriesTable, start, end time.Time) (*model.MetricsSummary, error) {
	window := FilterWindow(table, start, end)
	first, ok := window.First()
	if !ok {
		return nil, ErrEmptyWindow
	}
	last, _ := window.Last()

	values := window.Values()
	lo, hi := minMax(values)
	sum := &model.MetricsSummary{
		SeriesID:    table.SeriesID(),
		WindowStart: model.DateOnly(start),
		WindowEnd:   model.DateOnly(end),
		Count:       len(values),
		FirstValue:  first.Value,
		LastValue:   last.Value,
		Mean:        mean(values),
		Min:         lo,
		Max:         hi,
		Trend:       model.TrendUndefined,
	}

	if pct, err := PercentChange(first.Value, last.Value); err == nil {
		sum.PercentChange = &pct
		sum.Trend = ClassifyTrend(pct)
	}
	return sum, nil
}

// PercentChange returns (last-first)/first*100.
func PercentChange(first, last float64) (float64, error) {
	if first == 0 {
		return 0, ErrDivisionByZero
	}
	return (last - first) / first * 100, nil
}

// ClassifyTrend maps a percent change to a trend. Zero counts as downward.
func ClassifyTrend(pct float64) model.Trend {
	if pct > 0 {
		return model.TrendUpward
	}
	return model.TrendDownward
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minMax(values []float64) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
