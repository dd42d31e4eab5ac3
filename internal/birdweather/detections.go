package birdweather

import (
	"context"
	"time"
)

// DetectionQueryOptions control a paginated detections fetch.
type DetectionQueryOptions struct {
	// PageSize is the number of detections per page. The API caps this
	// at 100.
	PageSize int

	// MaxPages caps the total number of pages fetched in one call.
	MaxPages int

	// StopBefore stops pagination once a detection with a timestamp at or
	// before this instant is seen. Detections are returned newest-first, so
	// this is the incremental-sync boundary: once we see one at or before
	// the cached maximum we have caught up. The boundary row itself is
	// excluded.
	StopBefore *time.Time

	// EarliestAt stops pagination once a detection older than the
	// station's earliest detection is seen, preventing endless pagination
	// through global data on the initial seed fetch.
	EarliestAt *time.Time
}

// detectionNode is the wire form of one detection row.
type detectionNode struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SpeciesID int64     `json:"speciesId"`
	Species   struct {
		CommonName     string `json:"commonName"`
		ScientificName string `json:"scientificName"`
	} `json:"species"`
	Confidence  float64  `json:"confidence"`
	Probability *float64 `json:"probability"`
	Score       float64  `json:"score"`
	Certainty   string   `json:"certainty"`
}

// FetchDetections pages through the station's detections, newest-first,
// until a stop condition is hit: the StopBefore/EarliestAt boundary, an
// empty page, the server signalling no further pages, or the MaxPages cap.
// Rows are returned in receipt order; the caller re-sorts. stationID may be
// a token/slug; it is resolved to the numeric id first.
func (c *Client) FetchDetections(ctx context.Context, stationID string, opts DetectionQueryOptions) ([]Detection, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = 1000
	}

	var all []Detection
	var cursor string
	hitBoundary := false

	for pageNum := 0; pageNum < opts.MaxPages; pageNum++ {
		variables := map[string]any{"id": stationID, "first": opts.PageSize}
		if cursor != "" {
			variables["after"] = cursor
		}

		var resp struct {
			Station struct {
				Detections struct {
					PageInfo pageInfo        `json:"pageInfo"`
					Nodes    []detectionNode `json:"nodes"`
				} `json:"detections"`
			} `json:"station"`
		}
		if err := c.execute(ctx, detectionsQuery, variables, &resp); err != nil {
			return nil, err
		}

		page := resp.Station.Detections
		// An empty page means the station's data is exhausted.
		if len(page.Nodes) == 0 {
			break
		}

		for i := range page.Nodes {
			node := &page.Nodes[i]

			// Stop if we've reached the cached data boundary.
			if opts.StopBefore != nil && !node.Timestamp.After(*opts.StopBefore) {
				hitBoundary = true
				break
			}

			// Stop if we've gone past the station's earliest detection.
			if opts.EarliestAt != nil && node.Timestamp.Before(*opts.EarliestAt) {
				hitBoundary = true
				break
			}

			all = append(all, Detection{
				ID:             node.ID,
				Timestamp:      node.Timestamp,
				SpeciesID:      node.SpeciesID,
				CommonName:     node.Species.CommonName,
				ScientificName: node.Species.ScientificName,
				Confidence:     node.Confidence,
				Probability:    node.Probability,
				Score:          node.Score,
				Certainty:      node.Certainty,
			})
		}

		if hitBoundary || !page.PageInfo.HasNextPage {
			break
		}
		cursor = page.PageInfo.EndCursor

		if (pageNum+1)%10 == 0 {
			logger.Info("Detection fetch progress",
				"station_id", stationID,
				"page", pageNum+1,
				"detections", len(all))
		}
	}

	logger.Debug("Fetched detections",
		"station_id", stationID,
		"count", len(all),
		"hit_boundary", hitBoundary)

	return all, nil
}
