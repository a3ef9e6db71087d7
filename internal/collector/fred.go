package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"MarketInsights/internal/model"
)

// DefaultBaseURL is the FRED series observations endpoint.
const DefaultBaseURL = "https://api.stlouisfed.org/fred/series/observations"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 32 << 20

// FredFetcher implements Fetcher against the FRED observations API.
type FredFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFredFetcher creates a fetcher with a bounded timeout and optional proxy support.
func NewFredFetcher(baseURL string, timeout time.Duration, proxyURL string) *FredFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FredFetcher{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *FredFetcher) Name() string { return "fred" }

// fredError is the body FRED sends with 4xx responses.
type fredError struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// FetchSeries issues exactly one GET and returns the raw observation list.
func (f *FredFetcher) FetchSeries(ctx context.Context, sr model.SeriesRequest) ([]model.RawObservation, error) {
	u, err := url.Parse(f.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = sr.Query().Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &RequestFailedError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &RequestFailedError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		rf := &RequestFailedError{StatusCode: resp.StatusCode}
		var fe fredError
		if json.Unmarshal(body, &fe) == nil {
			rf.Message = fe.ErrorMessage
		}
		return nil, rf
	}
	return decodeObservations(body)
}

// decodeObservations extracts the "observations" list from a response body.
func decodeObservations(body []byte) ([]model.RawObservation, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := top["observations"]
	if !ok {
		return nil, fmt.Errorf("%w: missing observations field", ErrMalformedResponse)
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: observations is not a list", ErrMalformedResponse)
	}
	var obs []model.RawObservation
	if err := json.Unmarshal(trimmed, &obs); err != nil {
		return nil, fmt.Errorf("%w: decode observations: %v", ErrMalformedResponse, err)
	}
	if obs == nil {
		obs = []model.RawObservation{}
	}
	return obs, nil
}
