package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketInsights/internal/metrics"
	"MarketInsights/internal/model"
)

func TestCollector_Collect(t *testing.T) {
	mock := &MockFetcher{Observations: []model.RawObservation{
		{Date: "2025-01-01", Value: "100.0"},
		{Date: "2025-01-02", Value: "."},
		{Date: "2025-01-03", Value: "110.0"},
	}}
	m := metrics.NewCollector("test")
	col := NewCollector(mock, "abc", m)

	table, err := col.Collect(context.Background(), "DTWEXBGS", day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 110}, table.Values())

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "abc", reqs[0].APIKey)
	assert.Equal(t, "DTWEXBGS", reqs[0].SeriesID)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("DTWEXBGS", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ObservationsKept.WithLabelValues("DTWEXBGS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ObservationsDropped.WithLabelValues("DTWEXBGS", "missing_value")))
}

func TestCollector_InvalidRequestSkipsFetch(t *testing.T) {
	mock := &MockFetcher{}
	col := NewCollector(mock, "", nil)

	_, err := col.Collect(context.Background(), "DGS10", day(2025, 2, 1), day(2025, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, mock.Requests())
}

func TestCollector_PropagatesFetchError(t *testing.T) {
	mock := &MockFetcher{Err: &RequestFailedError{StatusCode: 403}}
	m := metrics.NewCollector("test")
	col := NewCollector(mock, "", m)

	_, err := col.Collect(context.Background(), "DGS10", day(2025, 1, 1), day(2025, 1, 2))
	var rf *RequestFailedError
	require.True(t, errors.As(err, &rf))
	assert.Equal(t, 403, rf.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("DGS10", "request_failed")))
}

func TestCollector_PropagatesMalformedDate(t *testing.T) {
	mock := &MockFetcher{Observations: []model.RawObservation{{Date: "2025-13-01", Value: "1"}}}
	col := NewCollector(mock, "", nil)

	table, err := col.Collect(context.Background(), "DGS10", day(2025, 1, 1), day(2025, 1, 2))
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrMalformedDate)
}

func TestCollector_CallsAreIndependent(t *testing.T) {
	mock := &MockFetcher{Observations: []model.RawObservation{{Date: "2025-01-01", Value: "1"}}}
	col := NewCollector(mock, "", nil)

	a, err := col.Collect(context.Background(), "A", day(2025, 1, 1), day(2025, 1, 1))
	require.NoError(t, err)
	mock.Observations = []model.RawObservation{{Date: "2025-01-01", Value: "2"}}
	b, err := col.Collect(context.Background(), "B", day(2025, 1, 1), day(2025, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, []float64{1}, a.Values())
	assert.Equal(t, []float64{2}, b.Values())
	assert.Equal(t, "A", a.SeriesID())
}

func TestFetchOutcome(t *testing.T) {
	assert.Equal(t, "ok", fetchOutcome(nil))
	assert.Equal(t, "request_failed", fetchOutcome(&RequestFailedError{StatusCode: 500}))
	assert.Equal(t, "timeout", fetchOutcome(&RequestFailedError{Err: context.DeadlineExceeded}))
	assert.Equal(t, "malformed_response", fetchOutcome(ErrMalformedResponse))
	assert.Equal(t, "error", fetchOutcome(errors.New("boom")))
}
