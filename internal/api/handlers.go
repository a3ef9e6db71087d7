package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"MarketInsights/internal/calculator"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/model"
	"MarketInsights/internal/notifier"
)

// Response status values.
const (
	StatusOK              = "ok"
	StatusEmptyWindow     = "empty_window"
	StatusNoPercentChange = "no_percent_change"
)

// SeriesHandler serves normalized series and their window metrics.
type SeriesHandler struct {
	collector    *collector.Collector
	series       []model.SeriesInfo
	defaultStart time.Time
	now          func() time.Time
}

// NewSeriesHandler creates a new series handler.
func NewSeriesHandler(col *collector.Collector, series []model.SeriesInfo, defaultStart time.Time) *SeriesHandler {
	return &SeriesHandler{
		collector:    col,
		series:       series,
		defaultStart: defaultStart,
		now:          time.Now,
	}
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message"`
	Code           int    `json:"code"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

// MetricsResponse is the JSON form of a window summary.
type MetricsResponse struct {
	WindowStart   string   `json:"window_start"`
	WindowEnd     string   `json:"window_end"`
	Count         int      `json:"count"`
	FirstValue    float64  `json:"first_value"`
	LastValue     float64  `json:"last_value"`
	PercentChange *float64 `json:"percent_change"`
	Mean          float64  `json:"mean"`
	Min           float64  `json:"min"`
	Max           float64  `json:"max"`
	Trend         string   `json:"trend"`
}

// SeriesResponse is returned by GET /api/series/{id}.
type SeriesResponse struct {
	SeriesID      string              `json:"series_id"`
	Label         string              `json:"label"`
	Start         string              `json:"start"`
	End           string              `json:"end"`
	Observations  []model.Observation `json:"observations"`
	MovingAverage []model.Observation `json:"moving_average,omitempty"`
	Metrics       *MetricsResponse    `json:"metrics"`
	Status        string              `json:"status"`
	Message       string              `json:"message,omitempty"`
}

// seriesQuery holds parsed query parameters.
type seriesQuery struct {
	info        model.SeriesInfo
	start, end  time.Time
	windowStart time.Time
	windowEnd   time.Time
	maPeriod    int
}

// seriesView is one fetched, filtered and summarized series.
type seriesView struct {
	query   seriesQuery
	window  *model.SeriesTable
	ma      *model.SeriesTable
	summary *model.MetricsSummary
	sumErr  error
}

// ListSeries handles GET /api/series
func (h *SeriesHandler) ListSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.series)
}

// GetSeries handles GET /api/series/{id}
func (h *SeriesHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	view, ok := h.load(w, r)
	if !ok {
		return
	}

	resp := SeriesResponse{
		SeriesID:     view.query.info.ID,
		Label:        view.query.info.Name(),
		Start:        view.query.start.Format(model.DateLayout),
		End:          view.query.end.Format(model.DateLayout),
		Observations: view.window.Observations(),
		Status:       StatusOK,
	}
	if view.ma != nil {
		resp.MovingAverage = view.ma.Observations()
	}

	switch {
	case errors.Is(view.sumErr, calculator.ErrEmptyWindow):
		resp.Status = StatusEmptyWindow
		resp.Message = notifier.DescribeError(view.sumErr)
	case view.sumErr != nil:
		h.sendError(w, view.sumErr)
		return
	default:
		resp.Metrics = toMetricsResponse(view.summary)
		if view.summary.PercentChange == nil {
			resp.Status = StatusNoPercentChange
			resp.Message = "Percent change is N/A because the first value in the window is zero."
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// load parses the request, runs the pipeline and writes an error response on failure.
func (h *SeriesHandler) load(w http.ResponseWriter, r *http.Request) (*seriesView, bool) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return nil, false
	}

	table, err := h.collector.Collect(r.Context(), q.info.ID, q.start, q.end)
	if err != nil {
		h.sendError(w, err)
		return nil, false
	}

	view := &seriesView{query: q, window: calculator.FilterWindow(table, q.windowStart, q.windowEnd)}
	if q.maPeriod > 0 {
		if view.ma, err = calculator.MovingAverage(view.window, q.maPeriod); err != nil {
			h.sendError(w, err)
			return nil, false
		}
	}
	view.summary, view.sumErr = calculator.ComputeMetrics(table, q.windowStart, q.windowEnd)
	return view, true
}

func (h *SeriesHandler) parseQuery(r *http.Request) (seriesQuery, error) {
	id := strings.ToUpper(strings.TrimSpace(mux.Vars(r)["id"]))
	q := seriesQuery{
		info:  model.FindSeries(h.series, id),
		start: h.defaultStart,
		end:   model.DateOnly(h.now()),
	}
	values := r.URL.Query()

	var err error
	if q.start, err = dateParam(values.Get("start"), q.start); err != nil {
		return q, fmt.Errorf("invalid start, expected YYYY-MM-DD")
	}
	if q.end, err = dateParam(values.Get("end"), q.end); err != nil {
		return q, fmt.Errorf("invalid end, expected YYYY-MM-DD")
	}
	if q.windowStart, err = dateParam(values.Get("window_start"), q.start); err != nil {
		return q, fmt.Errorf("invalid window_start, expected YYYY-MM-DD")
	}
	if q.windowEnd, err = dateParam(values.Get("window_end"), q.end); err != nil {
		return q, fmt.Errorf("invalid window_end, expected YYYY-MM-DD")
	}
	if q.windowEnd.Before(q.windowStart) {
		return q, fmt.Errorf("window_end is before window_start")
	}
	if s := values.Get("ma"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 1000 {
			return q, fmt.Errorf("invalid ma, expected a period between 1 and 1000")
		}
		q.maPeriod = n
	}
	return q, nil
}

func dateParam(s string, def time.Time) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return model.ParseDate(s)
}

func toMetricsResponse(s *model.MetricsSummary) *MetricsResponse {
	return &MetricsResponse{
		WindowStart:   s.WindowStart.Format(model.DateLayout),
		WindowEnd:     s.WindowEnd.Format(model.DateLayout),
		Count:         s.Count,
		FirstValue:    s.FirstValue,
		LastValue:     s.LastValue,
		PercentChange: s.PercentChange,
		Mean:          s.Mean,
		Min:           s.Min,
		Max:           s.Max,
		Trend:         string(s.Trend),
	}
}

// sendError maps a pipeline error to a status code and JSON body.
func (h *SeriesHandler) sendError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Message: notifier.DescribeError(err)}
	var rf *collector.RequestFailedError
	switch {
	case errors.Is(err, collector.ErrInvalidRequest):
		resp.Error, resp.Code = "bad_request", http.StatusBadRequest
	case errors.As(err, &rf) && rf.Timeout():
		resp.Error, resp.Code = "upstream_timeout", http.StatusGatewayTimeout
	case errors.As(err, &rf):
		resp.Error, resp.Code = "request_failed", http.StatusBadGateway
		resp.UpstreamStatus = rf.StatusCode
	case errors.Is(err, collector.ErrMalformedResponse):
		resp.Error, resp.Code = "malformed_response", http.StatusBadGateway
	case errors.Is(err, collector.ErrMalformedDate):
		resp.Error, resp.Code = "malformed_date", http.StatusBadGateway
	default:
		log.Printf("[ERROR] unhandled api error: %v", err)
		resp.Error, resp.Code = "internal_error", http.StatusInternalServerError
	}
	writeJSON(w, resp.Code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}
