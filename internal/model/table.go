package model

import "time"

// SeriesTable is an ordered, read-only sequence of observations.
// The backing slice is never shared with callers.
type SeriesTable struct {
	seriesID string
	obs      []Observation
}

// NewSeriesTable copies obs into a new table.
func NewSeriesTable(seriesID string, obs []Observation) *SeriesTable {
	cp := make([]Observation, len(obs))
	copy(cp, obs)
	return &SeriesTable{seriesID: seriesID, obs: cp}
}

// SeriesID returns the identifier the table was fetched for.
func (t *SeriesTable) SeriesID() string { return t.seriesID }

// Len returns the number of observations.
func (t *SeriesTable) Len() int { return len(t.obs) }

// At returns the i-th observation. It panics if i is out of range, like a slice index.
func (t *SeriesTable) At(i int) Observation { return t.obs[i] }

// Observations returns a copy of all observations.
func (t *SeriesTable) Observations() []Observation {
	cp := make([]Observation, len(t.obs))
	copy(cp, t.obs)
	return cp
}

// Values returns a copy of the values in sequence order.
func (t *SeriesTable) Values() []float64 {
	vals := make([]float64, len(t.obs))
	for i, o := range t.obs {
		vals[i] = o.Value
	}
	return vals
}

// First returns the first observation, or false for an empty table.
func (t *SeriesTable) First() (Observation, bool) {
	if len(t.obs) == 0 {
		return Observation{}, false
	}
	return t.obs[0], true
}

// Last returns the last observation, or false for an empty table.
func (t *SeriesTable) Last() (Observation, bool) {
	if len(t.obs) == 0 {
		return Observation{}, false
	}
	return t.obs[len(t.obs)-1], true
}

// Trend is the qualitative direction of a series over a window.
type Trend string

const (
	TrendUpward   Trend = "upward"
	TrendDownward Trend = "downward"
	// TrendUndefined is used when the percent change has a zero base.
	TrendUndefined Trend = "undefined"
)

// MetricsSummary holds derived statistics for one window of a series.
type MetricsSummary struct {
	SeriesID    string
	WindowStart time.Time
	WindowEnd   time.Time
	Count       int
	FirstValue  float64
	LastValue   float64
	// PercentChange is nil when FirstValue is zero.
	PercentChange *float64
	Mean          float64
	Min           float64
	Max           float64
	Trend         Trend
}
