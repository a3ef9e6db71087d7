package notifier

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/model"
)

// NotAvailable is shown in place of a percent change with a zero base.
const NotAvailable = "N/A"

// FormatPercentChange renders a percent change, or N/A when it is undefined.
func FormatPercentChange(pct *float64) string {
	if pct == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%+.2f%%", *pct)
}

// DescribeError maps a pipeline failure to a message a user can act on.
func DescribeError(err error) string {
	var rf *collector.RequestFailedError
	var md *collector.MalformedDateError
	switch {
	case errors.Is(err, calculator.ErrEmptyWindow):
		return "Not enough data for the selected range."
	case errors.Is(err, collector.ErrInvalidRequest):
		return "Invalid request: check the series id and that the start date is not after the end date."
	case errors.As(err, &rf) && rf.Timeout():
		return "The statistics service did not answer in time."
	case errors.As(err, &rf) && rf.StatusCode == 0:
		return "Could not reach the statistics service."
	case errors.As(err, &rf) && rf.Message != "":
		return fmt.Sprintf("The statistics service rejected the request (status %d): %s", rf.StatusCode, rf.Message)
	case errors.As(err, &rf):
		return fmt.Sprintf("The statistics service rejected the request (status %d).", rf.StatusCode)
	case errors.Is(err, collector.ErrMalformedResponse):
		return "The statistics service returned unexpected data."
	case errors.As(err, &md):
		return fmt.Sprintf("The statistics service returned an invalid date (%q).", md.Date)
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

// FormatSeriesReport formats one series summary, or the reason it is missing.
func FormatSeriesReport(info model.SeriesInfo, sum *model.MetricsSummary, err error) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> (%s)\n", html.EscapeString(info.Name()), html.EscapeString(info.ID)))

	if err != nil {
		b.WriteString(html.EscapeString(DescribeError(err)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Window: %s → %s (%d obs)\n",
		sum.WindowStart.Format(model.DateLayout), sum.WindowEnd.Format(model.DateLayout), sum.Count))
	b.WriteString(fmt.Sprintf("First: %.2f | Last: %.2f\n", sum.FirstValue, sum.LastValue))
	b.WriteString(fmt.Sprintf("Change: %s", FormatPercentChange(sum.PercentChange)))
	switch sum.Trend {
	case model.TrendUpward:
		b.WriteString(" ▲ upward")
	case model.TrendDownward:
		b.WriteString(" ▼ downward")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Mean: %.2f | Min: %.2f | Max: %.2f\n", sum.Mean, sum.Min, sum.Max))
	return b.String()
}

// SeriesResult pairs a catalog entry with its summary or failure.
type SeriesResult struct {
	Info    model.SeriesInfo
	Summary *model.MetricsSummary
	Err     error
}

// FormatDailyReport formats the multi-series report sent by the scheduler.
func FormatDailyReport(now time.Time, results []SeriesResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Market Insights</b> | %s\n\n", now.Format(model.DateLayout)))
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatSeriesReport(r.Info, r.Summary, r.Err))
	}
	return b.String()
}

// FormatCatalog lists the configured series.
func FormatCatalog(series []model.SeriesInfo) string {
	var b strings.Builder
	b.WriteString("📚 <b>Series</b>\n\n")
	for _, s := range series {
		b.WriteString(fmt.Sprintf("• %s: %s\n", html.EscapeString(s.ID), html.EscapeString(s.Name())))
	}
	return b.String()
}
