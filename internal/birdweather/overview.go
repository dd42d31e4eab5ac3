package birdweather

import (
	"context"
)

// FetchStationOverview fetches station metadata: name, location, total
// counts, detection date range, current weather, and the latest environment
// sensor reading.
func (c *Client) FetchStationOverview(ctx context.Context, stationID string) (*StationOverview, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Station *struct {
			StationOverview
			Sensors struct {
				Environment *EnvironmentReading `json:"environment"`
			} `json:"sensors"`
		} `json:"station"`
	}
	if err := c.execute(ctx, stationOverviewQuery, map[string]any{"id": stationID}, &resp); err != nil {
		return nil, err
	}

	if resp.Station == nil {
		return nil, noStationError(stationID)
	}

	overview := resp.Station.StationOverview
	overview.Environment = resp.Station.Sensors.Environment

	logger.Debug("Fetched station overview",
		"station_id", stationID,
		"name", overview.Name,
		"detections", overview.Counts.Detections)

	return &overview, nil
}
