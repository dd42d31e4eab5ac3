package birdweather

import (
	"context"
)

// FetchEnvironmentHistory pages forward through the station's environment
// sensor readings (temperature, humidity, barometric pressure, sound
// pressure level, AQI, eCO2, VOC), accumulating until there is no next page
// or maxPages is reached. The oldest bound is supplied explicitly through
// period.From; the endpoint accumulates forward, unlike the newest-first
// detections listing.
func (c *Client) FetchEnvironmentHistory(ctx context.Context, stationID string, period *Period, pageSize, maxPages int) ([]EnvironmentReading, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = 1000
	}
	if maxPages <= 0 {
		maxPages = 100
	}

	var all []EnvironmentReading
	var cursor string

	for i := 0; i < maxPages; i++ {
		variables := map[string]any{"id": stationID, "first": pageSize}
		if cursor != "" {
			variables["after"] = cursor
		}
		if period != nil {
			variables["period"] = period
		}

		var resp struct {
			Station struct {
				Sensors struct {
					EnvironmentHistory struct {
						TotalCount int                  `json:"totalCount"`
						PageInfo   pageInfo             `json:"pageInfo"`
						Nodes      []EnvironmentReading `json:"nodes"`
					} `json:"environmentHistory"`
				} `json:"sensors"`
			} `json:"station"`
		}
		if err := c.execute(ctx, environmentHistoryQuery, variables, &resp); err != nil {
			return nil, err
		}

		hist := resp.Station.Sensors.EnvironmentHistory
		all = append(all, hist.Nodes...)

		if !hist.PageInfo.HasNextPage {
			break
		}
		cursor = hist.PageInfo.EndCursor
	}

	logger.Debug("Fetched environment history",
		"station_id", stationID,
		"count", len(all))

	return all, nil
}
