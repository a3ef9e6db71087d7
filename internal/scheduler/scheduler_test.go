package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketInsights/internal/collector"
	"MarketInsights/internal/metrics"
	"MarketInsights/internal/model"
)

// seriesFetcher serves canned observations per series id.
type seriesFetcher struct {
	mu   sync.Mutex
	data map[string][]model.RawObservation
	errs map[string]error
	seen []model.SeriesRequest
}

func (f *seriesFetcher) Name() string { return "test" }

func (f *seriesFetcher) FetchSeries(_ context.Context, req model.SeriesRequest) ([]model.RawObservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, req)
	if err := f.errs[req.SeriesID]; err != nil {
		return nil, err
	}
	return f.data[req.SeriesID], nil
}

type recordingSender struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (r *recordingSender) Send(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, text)
	return r.err
}

var testNow = time.Date(2025, 3, 31, 9, 30, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, f *seriesFetcher, sender *recordingSender) *Scheduler {
	t.Helper()
	m := metrics.NewCollector("test")
	col := collector.NewCollector(f, "key", m)
	series := []model.SeriesInfo{
		{ID: "DTWEXBGS", Label: "USD Index"},
		{ID: "DGS10", Label: "10-Year Treasury Yield"},
		{ID: "CSUSHPINSA", Label: "Home Price Index"},
	}
	s := NewScheduler(context.Background(), col, sender, m, series, 90, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Now = func() time.Time { return testNow }
	return s
}

func testFetcher() *seriesFetcher {
	return &seriesFetcher{
		data: map[string][]model.RawObservation{
			"DTWEXBGS": {
				{Date: "2025-01-02", Value: "100.0"},
				{Date: "2025-01-03", Value: "."},
				{Date: "2025-03-28", Value: "110.0"},
			},
			"DGS10": {},
		},
		errs: map[string]error{
			"CSUSHPINSA": &collector.RequestFailedError{StatusCode: 500},
		},
	}
}

func TestBuildReport(t *testing.T) {
	f := testFetcher()
	s := newTestScheduler(t, f, &recordingSender{})

	results := s.BuildReport(context.Background())
	require.Len(t, results, 3)

	assert.Equal(t, "DTWEXBGS", results[0].Info.ID)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Summary.PercentChange)
	assert.InDelta(t, 10.0, *results[0].Summary.PercentChange, 1e-10)
	assert.Equal(t, model.TrendUpward, results[0].Summary.Trend)

	assert.Equal(t, "DGS10", results[1].Info.ID)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "CSUSHPINSA", results[2].Info.ID)
	var rf *collector.RequestFailedError
	assert.True(t, errors.As(results[2].Err, &rf))

	// Lookback window ends on the current calendar day.
	require.Len(t, f.seen, 3)
	for _, req := range f.seen {
		assert.Equal(t, "2025-03-31", req.EndDate.Format(model.DateLayout))
		assert.Equal(t, "2024-12-31", req.StartDate.Format(model.DateLayout))
	}
}

func TestRunReportNow(t *testing.T) {
	sender := &recordingSender{}
	s := newTestScheduler(t, testFetcher(), sender)

	s.RunReportNow()
	require.Len(t, sender.msgs, 1)
	assert.Contains(t, sender.msgs[0], "Market Insights</b> | 2025-03-31")
	assert.Contains(t, sender.msgs[0], "Not enough data for the selected range.")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ReportsSent.WithLabelValues("ok")))
}

func TestRunReportNow_SendFailureCounted(t *testing.T) {
	sender := &recordingSender{err: errors.New("down")}
	s := newTestScheduler(t, testFetcher(), sender)

	s.RunReportNow()
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.ReportsSent.WithLabelValues("error")))
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(t, testFetcher(), &recordingSender{})
	assert.NoError(t, s.Register("0 0 8 * * 1-5"))
	assert.Error(t, s.Register("not a cron"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(t, testFetcher(), &recordingSender{})
	ctx := context.Background()

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"list", "/list", "• DGS10: 10-Year Treasury Yield"},
		{"list with bot suffix", "/list@InsightsBot", "• DTWEXBGS: USD Index"},
		{"series default window", "/series dtwexbgs", "+10.00%"},
		{"series explicit window", "/series DTWEXBGS 2025-01-02 2025-01-03", "Change: +0.00% ▼ downward"},
		{"series empty window", "/series DTWEXBGS 2024-01-01 2024-06-30", "Not enough data"},
		{"series inverted dates", "/series DTWEXBGS 2025-03-01 2025-01-01", "Invalid request"},
		{"series bad date", "/series DGS10 yesterday", "Invalid start date"},
		{"series bad end date", "/series DGS10 2025-01-01 soon", "Invalid end date"},
		{"series upstream error", "/series CSUSHPINSA", "status 500"},
		{"series no args", "/series", "Usage"},
		{"unknown", "/start", "Commands:"},
		{"empty", "   ", "Commands:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, s.HandleCommand(ctx, tt.command), tt.want)
		})
	}
}

func TestHandleCommand_Report(t *testing.T) {
	s := newTestScheduler(t, testFetcher(), &recordingSender{})
	out := s.HandleCommand(context.Background(), "/report")
	assert.Contains(t, out, "USD Index")
	assert.Contains(t, out, "Home Price Index")
}
