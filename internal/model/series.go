package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the calendar date format used by the statistics API.
const DateLayout = "2006-01-02"

// FileTypeJSON is the only output format requested from the API.
const FileTypeJSON = "json"

// SeriesInfo is one entry of the configured series catalog.
type SeriesInfo struct {
	ID    string `yaml:"id" json:"id" validate:"required"`
	Label string `yaml:"label" json:"label"`
}

// Name returns the label, falling back to the series id.
func (s SeriesInfo) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// FindSeries returns the catalog entry for id, or a bare entry for an unlisted id.
func FindSeries(catalog []SeriesInfo, id string) SeriesInfo {
	for _, s := range catalog {
		if s.ID == id {
			return s
		}
	}
	return SeriesInfo{ID: id}
}

// SeriesRequest holds the query for a single observations call.
type SeriesRequest struct {
	SeriesID  string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
	APIKey    string
}

// Query encodes the request as URL query parameters.
func (r SeriesRequest) Query() url.Values {
	q := url.Values{}
	q.Set("series_id", r.SeriesID)
	q.Set("observation_start", r.StartDate.Format(DateLayout))
	q.Set("observation_end", r.EndDate.Format(DateLayout))
	q.Set("file_type", FileTypeJSON)
	q.Set("api_key", r.APIKey)
	return q
}

// RawObservation is a single observation as returned by the API.
// Value may be a missing-data marker such as ".".
type RawObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// Observation is one parsed (date, value) point.
type Observation struct {
	Date  time.Time
	Value float64
}

type observationJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (o Observation) MarshalJSON() ([]byte, error) {
	return json.Marshal(observationJSON{Date: o.Date.Format(DateLayout), Value: o.Value})
}

// UnmarshalJSON parses the YYYY-MM-DD form produced by MarshalJSON.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var v observationJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	d, err := ParseDate(v.Date)
	if err != nil {
		return err
	}
	o.Date, o.Value = d, v.Value
	return nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// DateOnly truncates t to its calendar date in UTC, keeping t's own year/month/day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
