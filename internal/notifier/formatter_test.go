package notifier

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/model"
)

func pct(v float64) *float64 { return &v }

func TestFormatPercentChange(t *testing.T) {
	cases := map[string]*float64{
		"+10.00%": pct(10),
		"-2.50%":  pct(-2.5),
		"+0.00%":  pct(0),
		"N/A":     nil,
	}
	for want, in := range cases {
		if got := FormatPercentChange(in); got != want {
			t.Errorf("FormatPercentChange(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDescribeError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", calculator.ErrEmptyWindow), "Not enough data for the selected range."},
		{collector.ErrInvalidRequest, "Invalid request"},
		{&collector.RequestFailedError{Err: timeoutErr{}}, "did not answer in time"},
		{&collector.RequestFailedError{Err: errors.New("dial tcp: refused")}, "Could not reach"},
		{&collector.RequestFailedError{StatusCode: 400, Message: "Bad api_key"}, "status 400): Bad api_key"},
		{&collector.RequestFailedError{StatusCode: 503}, "status 503)."},
		{collector.ErrMalformedResponse, "unexpected data"},
		{&collector.MalformedDateError{Index: 2, Date: "bad", Err: errors.New("x")}, `invalid date ("bad")`},
		{errors.New("boom"), "Unexpected error: boom"},
	}
	for _, c := range cases {
		if got := DescribeError(c.err); !strings.Contains(got, c.want) {
			t.Errorf("DescribeError(%v) = %q, want it to contain %q", c.err, got, c.want)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestFormatSeriesReport(t *testing.T) {
	info := model.SeriesInfo{ID: "DTWEXBGS", Label: "USD Index"}
	sum := &model.MetricsSummary{
		SeriesID:      "DTWEXBGS",
		WindowStart:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:     time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC),
		Count:         2,
		FirstValue:    100,
		LastValue:     110,
		PercentChange: pct(10),
		Mean:          105,
		Min:           100,
		Max:           110,
		Trend:         model.TrendUpward,
	}
	out := FormatSeriesReport(info, sum, nil)
	for _, want := range []string{"USD Index", "(DTWEXBGS)", "2025-01-01 → 2025-01-03", "+10.00%", "▲ upward", "Mean: 105.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	sum.PercentChange = nil
	sum.Trend = model.TrendUndefined
	out = FormatSeriesReport(info, sum, nil)
	if !strings.Contains(out, "Change: N/A\n") {
		t.Errorf("expected N/A without a trend marker:\n%s", out)
	}
}

func TestFormatSeriesReport_Error(t *testing.T) {
	info := model.SeriesInfo{ID: "DGS10"}
	out := FormatSeriesReport(info, nil, calculator.ErrEmptyWindow)
	if !strings.Contains(out, "Not enough data") {
		t.Errorf("unexpected output: %s", out)
	}
	if !strings.Contains(out, "<b>DGS10</b>") {
		t.Errorf("expected id as name when no label is set: %s", out)
	}
}

func TestFormatSeriesReport_EscapesHTML(t *testing.T) {
	out := FormatSeriesReport(model.SeriesInfo{ID: "X", Label: "<b>&"}, nil, errors.New("<oops>"))
	if strings.Contains(out, "<oops>") || !strings.Contains(out, "&lt;b&gt;&amp;") {
		t.Errorf("expected escaped output: %s", out)
	}
}

func TestFormatDailyReport(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	out := FormatDailyReport(now, []SeriesResult{
		{Info: model.SeriesInfo{ID: "A"}, Err: calculator.ErrEmptyWindow},
		{Info: model.SeriesInfo{ID: "B"}, Err: collector.ErrMalformedResponse},
	})
	if !strings.HasPrefix(out, "📊 <b>Market Insights</b> | 2025-03-10") {
		t.Errorf("unexpected header: %s", out)
	}
	if strings.Index(out, "(A)") > strings.Index(out, "(B)") {
		t.Errorf("results out of order: %s", out)
	}
}

func TestFormatCatalog(t *testing.T) {
	out := FormatCatalog([]model.SeriesInfo{{ID: "DGS10", Label: "10Y"}, {ID: "CSUSHPINSA"}})
	if !strings.Contains(out, "• DGS10: 10Y\n") || !strings.Contains(out, "• CSUSHPINSA: CSUSHPINSA\n") {
		t.Errorf("unexpected catalog: %s", out)
	}
}
