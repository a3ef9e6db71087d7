package collector

import (
	"context"

	"MarketInsights/internal/model"
)

// Fetcher defines the interface for fetching raw series observations.
type Fetcher interface {
	FetchSeries(ctx context.Context, req model.SeriesRequest) ([]model.RawObservation, error)
	Name() string
}
