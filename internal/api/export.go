package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/xuri/excelize/v2"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/model"
	"MarketInsights/internal/notifier"
)

const (
	observationsSheet = "Observations"
	summarySheet      = "Summary"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportSeries handles GET /api/series/{id}/export
func (h *SeriesHandler) ExportSeries(w http.ResponseWriter, r *http.Request) {
	view, ok := h.load(w, r)
	if !ok {
		return
	}
	if view.sumErr != nil && !errors.Is(view.sumErr, calculator.ErrEmptyWindow) {
		h.sendError(w, view.sumErr)
		return
	}

	f, err := buildWorkbook(view)
	if err != nil {
		h.sendError(w, fmt.Errorf("build workbook: %w", err))
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("%s_%s_%s.xlsx", view.query.info.ID,
		view.query.windowStart.Format(model.DateLayout), view.query.windowEnd.Format(model.DateLayout))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("[WARN] write workbook: %v", err)
	}
}

func buildWorkbook(view *seriesView) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", observationsSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(observationsSheet, "A1", &[]interface{}{"date", "value"}); err != nil {
		return nil, err
	}
	obs := view.window.Observations()
	for i, o := range obs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(observationsSheet, cell, &[]interface{}{o.Date.Format(model.DateLayout), o.Value}); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	rows := summaryRows(view)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func summaryRows(view *seriesView) [][]interface{} {
	rows := [][]interface{}{
		{"series_id", view.query.info.ID},
		{"label", view.query.info.Name()},
		{"window_start", view.query.windowStart.Format(model.DateLayout)},
		{"window_end", view.query.windowEnd.Format(model.DateLayout)},
	}
	if view.sumErr != nil {
		return append(rows, []interface{}{"status", notifier.DescribeError(view.sumErr)})
	}
	s := view.summary
	var pct interface{} = notifier.NotAvailable
	if s.PercentChange != nil {
		pct = *s.PercentChange
	}
	return append(rows,
		[]interface{}{"count", s.Count},
		[]interface{}{"first_value", s.FirstValue},
		[]interface{}{"last_value", s.LastValue},
		[]interface{}{"percent_change", pct},
		[]interface{}{"mean", s.Mean},
		[]interface{}{"min", s.Min},
		[]interface{}{"max", s.Max},
		[]interface{}{"trend", string(s.Trend)},
	)
}
