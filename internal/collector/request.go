package collector

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"MarketInsights/internal/model"
)

var validate = validator.New()

// BuildRequest assembles the query for one observations call.
// The series id is passed through without a whitelist check and the key is not inspected.
func BuildRequest(seriesID string, start, end time.Time, apiKey string) (model.SeriesRequest, error) {
	req := model.SeriesRequest{
		SeriesID:  seriesID,
		StartDate: model.DateOnly(start),
		EndDate:   model.DateOnly(end),
		APIKey:    apiKey,
	}
	if err := validate.Struct(req); err != nil {
		return model.SeriesRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return req, nil
}

// BuildRequestFromStrings is BuildRequest for YYYY-MM-DD date strings.
func BuildRequestFromStrings(seriesID, start, end, apiKey string) (model.SeriesRequest, error) {
	s, err := model.ParseDate(start)
	if err != nil {
		return model.SeriesRequest{}, fmt.Errorf("%w: start: %v", ErrInvalidRequest, err)
	}
	e, err := model.ParseDate(end)
	if err != nil {
		return model.SeriesRequest{}, fmt.Errorf("%w: end: %v", ErrInvalidRequest, err)
	}
	return BuildRequest(seriesID, s, e, apiKey)
}
