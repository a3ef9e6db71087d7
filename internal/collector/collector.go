package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"MarketInsights/internal/metrics"
	"MarketInsights/internal/model"
)

// MockFetcher returns fixed observations for development and testing.
type MockFetcher struct {
	Observations []model.RawObservation
	Err          error

	mu       sync.Mutex
	requests []model.SeriesRequest
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchSeries(_ context.Context, req model.SeriesRequest) ([]model.RawObservation, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.RawObservation, len(m.Observations))
	copy(out, m.Observations)
	return out, nil
}

// Requests returns the requests seen so far.
func (m *MockFetcher) Requests() []model.SeriesRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SeriesRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Collector runs the build, fetch and normalize steps for one series at a time.
// It holds no per-call state, so concurrent Collect calls are independent.
type Collector struct {
	Fetcher Fetcher
	APIKey  string
	Metrics *metrics.Collector
}

// NewCollector creates a new Collector. m may be nil.
func NewCollector(fetcher Fetcher, apiKey string, m *metrics.Collector) *Collector {
	return &Collector{Fetcher: fetcher, APIKey: apiKey, Metrics: m}
}

// Collect fetches a series for [start, end] and normalizes it.
func (c *Collector) Collect(ctx context.Context, seriesID string, start, end time.Time) (*model.SeriesTable, error) {
	req, err := BuildRequest(seriesID, start, end, c.APIKey)
	if err != nil {
		return nil, err
	}

	fetchID := uuid.NewString()
	log.Printf("[INFO] fetching series=%s start=%s end=%s source=%s fetch_id=%s",
		req.SeriesID, req.StartDate.Format(model.DateLayout), req.EndDate.Format(model.DateLayout), c.Fetcher.Name(), fetchID)

	began := time.Now()
	raw, err := c.Fetcher.FetchSeries(ctx, req)
	c.recordFetch(req.SeriesID, err, time.Since(began))
	if err != nil {
		log.Printf("[ERROR] fetch series=%s fetch_id=%s: %v", req.SeriesID, fetchID, err)
		return nil, fmt.Errorf("fetch %s: %w", req.SeriesID, err)
	}

	table, stats, err := NormalizeWithStats(req.SeriesID, raw)
	if err != nil {
		log.Printf("[ERROR] normalize series=%s fetch_id=%s: %v", req.SeriesID, fetchID, err)
		return nil, fmt.Errorf("normalize %s: %w", req.SeriesID, err)
	}
	if c.Metrics != nil {
		c.Metrics.RecordNormalize(req.SeriesID, stats.Kept, stats.MissingValue, stats.DuplicateDate)
	}
	if stats.MissingValue > 0 || stats.DuplicateDate > 0 {
		log.Printf("[WARN] series=%s fetch_id=%s dropped %d missing and %d duplicate observations",
			req.SeriesID, fetchID, stats.MissingValue, stats.DuplicateDate)
	}
	log.Printf("[INFO] series=%s fetch_id=%s normalized %d observations", req.SeriesID, fetchID, stats.Kept)
	return table, nil
}

func (c *Collector) recordFetch(seriesID string, err error, d time.Duration) {
	if c.Metrics == nil {
		return
	}
	c.Metrics.RecordFetch(seriesID, fetchOutcome(err), d)
}

func fetchOutcome(err error) string {
	var rf *RequestFailedError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &rf) && rf.Timeout():
		return "timeout"
	case errors.As(err, &rf):
		return "request_failed"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	default:
		return "error"
	}
}
