package birdweather

import (
	"context"
	"strings"
	"unicode"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/birdweather-sync/internal/errors"
)

// ResolveStationID resolves the numeric station id from a token/slug. The
// station(id:) query requires the numeric id, so non-numeric tokens go
// through a station search. Resolutions are cached for the client's
// lifetime.
func (c *Client) ResolveStationID(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.Newf("station token is empty; set BIRDWEATHER_STATION_ID").
			Category(errors.CategoryConfiguration).
			Component("birdweather").
			Build()
	}

	// Already a numeric id, use it directly.
	if isDigits(token) {
		return token, nil
	}

	if cached, found := c.stations.Get(token); found {
		if id, ok := cached.(string); ok {
			logger.Debug("Station id cache hit", "token", token, "station_id", id)
			return id, nil
		}
	}

	var resp struct {
		Stations struct {
			Nodes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"nodes"`
		} `json:"stations"`
	}
	if err := c.execute(ctx, findStationQuery, map[string]any{"query": token}, &resp); err != nil {
		return "", err
	}

	if len(resp.Stations.Nodes) == 0 {
		return "", errors.Newf("could not find a station matching %q; check your BIRDWEATHER_STATION_ID in .env", token).
			Category(errors.CategoryNotFound).
			Context("token", token).
			Component("birdweather").
			Build()
	}

	id := resp.Stations.Nodes[0].ID
	c.stations.Set(token, id, cache.NoExpiration)

	logger.Info("Resolved station id",
		"token", token,
		"station_id", id,
		"station_name", resp.Stations.Nodes[0].Name)

	return id, nil
}

// noStationError reports a station id that resolved to no station object.
func noStationError(stationID string) error {
	return errors.Newf("station %q not found; check your BIRDWEATHER_STATION_ID in .env", stationID).
		Category(errors.CategoryNotFound).
		Context("station_id", stationID).
		Component("birdweather").
		Build()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) == -1
}
