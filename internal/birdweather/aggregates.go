package birdweather

import (
	"context"
)

// FetchDailyDetectionCounts fetches the server-side per-day, per-species
// detection counts. The local ComputeDailyDetectionCounts aggregation
// replicates this result's schema from cached raw data.
func (c *Client) FetchDailyDetectionCounts(ctx context.Context, stationID string, period *Period) ([]DailyCountRow, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{"stationIds": []string{stationID}}
	if period != nil {
		variables["period"] = period
	}

	var resp struct {
		DailyDetectionCounts []struct {
			Date      string `json:"date"`
			DayOfYear int    `json:"dayOfYear"`
			Total     int64  `json:"total"`
			Counts    []struct {
				SpeciesID int64 `json:"speciesId"`
				Count     int64 `json:"count"`
				Species   struct {
					CommonName string `json:"commonName"`
				} `json:"species"`
			} `json:"counts"`
		} `json:"dailyDetectionCounts"`
	}
	if err := c.execute(ctx, dailyDetectionCountsQuery, variables, &resp); err != nil {
		return nil, err
	}

	rows := make([]DailyCountRow, 0, len(resp.DailyDetectionCounts))
	for i := range resp.DailyDetectionCounts {
		day := &resp.DailyDetectionCounts[i]
		for j := range day.Counts {
			sp := &day.Counts[j]
			rows = append(rows, DailyCountRow{
				Date:       day.Date,
				DayOfYear:  day.DayOfYear,
				DailyTotal: day.Total,
				SpeciesID:  sp.SpeciesID,
				CommonName: sp.Species.CommonName,
				Count:      sp.Count,
			})
		}
	}

	logger.Debug("Fetched daily detection counts", "station_id", stationID, "rows", len(rows))

	return rows, nil
}

// FetchTimeOfDayCounts fetches the server-side hour-of-day detection
// counts. The local ComputeTimeOfDayCounts aggregation replicates this
// result's schema from cached raw data.
func (c *Client) FetchTimeOfDayCounts(ctx context.Context, stationID string, period *Period) ([]TimeOfDayRow, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	variables := map[string]any{"id": stationID}
	if period != nil {
		variables["period"] = period
	}

	var resp struct {
		Station struct {
			TimeOfDayDetectionCounts []struct {
				SpeciesID int64 `json:"speciesId"`
				Count     int64 `json:"count"`
				Species   struct {
					CommonName string `json:"commonName"`
				} `json:"species"`
				Bins []struct {
					Count int64   `json:"count"`
					Key   float64 `json:"key"`
				} `json:"bins"`
			} `json:"timeOfDayDetectionCounts"`
		} `json:"station"`
	}
	if err := c.execute(ctx, timeOfDayCountsQuery, variables, &resp); err != nil {
		return nil, err
	}

	var rows []TimeOfDayRow
	for i := range resp.Station.TimeOfDayDetectionCounts {
		sp := &resp.Station.TimeOfDayDetectionCounts[i]
		for j := range sp.Bins {
			rows = append(rows, TimeOfDayRow{
				SpeciesID:  sp.SpeciesID,
				CommonName: sp.Species.CommonName,
				TotalCount: sp.Count,
				Hour:       int(sp.Bins[j].Key),
				Count:      sp.Bins[j].Count,
			})
		}
	}

	logger.Debug("Fetched time-of-day counts", "station_id", stationID, "rows", len(rows))

	return rows, nil
}
