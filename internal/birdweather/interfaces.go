package birdweather

import (
	"context"
)

// Interface defines what methods a BirdWeather data client must have.
// Station-scoped fetchers accept either the numeric station id or a
// token/slug; implementations resolve tokens themselves.
type Interface interface {
	ResolveStationID(ctx context.Context, token string) (string, error)
	FetchDetections(ctx context.Context, stationID string, opts DetectionQueryOptions) ([]Detection, error)
	FetchEnvironmentHistory(ctx context.Context, stationID string, period *Period, pageSize, maxPages int) ([]EnvironmentReading, error)
	FetchTopSpecies(ctx context.Context, stationID string, period *Period, limit int) ([]TopSpeciesRow, error)
	FetchSpeciesByIDs(ctx context.Context, ids []int64) ([]SpeciesMeta, error)
	FetchSpeciesProbabilities(ctx context.Context, stationID string) ([]SpeciesProbability, error)
	FetchStationOverview(ctx context.Context, stationID string) (*StationOverview, error)
	FetchDailyDetectionCounts(ctx context.Context, stationID string, period *Period) ([]DailyCountRow, error)
	FetchTimeOfDayCounts(ctx context.Context, stationID string, period *Period) ([]TimeOfDayRow, error)
	Close()
}

// compile-time check
var _ Interface = (*Client)(nil)
