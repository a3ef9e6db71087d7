package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"MarketInsights/internal/metrics"
)

// NewRouter wires the series endpoints, health check and metrics.
func NewRouter(h *SeriesHandler, m *metrics.Collector) *mux.Router {
	r := mux.NewRouter()
	r.Use(metricsMiddleware(m))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	s := r.PathPrefix("/api").Subrouter()
	s.HandleFunc("/series", h.ListSeries).Methods(http.MethodGet)
	s.HandleFunc("/series/{id}", h.GetSeries).Methods(http.MethodGet)
	s.HandleFunc("/series/{id}/export", h.ExportSeries).Methods(http.MethodGet)
	return r
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(m *metrics.Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cr := mux.CurrentRoute(r); cr != nil {
				if tpl, err := cr.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.RecordAPIRequest(route, rec.status, time.Since(began))
		})
	}
}
