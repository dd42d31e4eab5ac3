package birdweather

import (
	"context"
)

// speciesNode is the wire form of the nested species metadata object.
type speciesNode struct {
	CommonName       string  `json:"commonName"`
	ScientificName   string  `json:"scientificName"`
	ImageURL         *string `json:"imageUrl"`
	ThumbnailURL     *string `json:"thumbnailUrl"`
	Color            *string `json:"color"`
	EbirdURL         *string `json:"ebirdUrl"`
	WikipediaSummary *string `json:"wikipediaSummary"`
}

// FetchTopSpecies fetches the station's top species within a period,
// flattening the nested certainty breakdown into row-level columns. Absent
// breakdown fields default to 0.
func (c *Client) FetchTopSpecies(ctx context.Context, stationID string, period *Period, limit int) ([]TopSpeciesRow, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	variables := map[string]any{"id": stationID, "limit": limit}
	if period != nil {
		variables["period"] = period
	}

	var resp struct {
		Station struct {
			TopSpecies []struct {
				SpeciesID          int64    `json:"speciesId"`
				Count              int64    `json:"count"`
				AverageProbability *float64 `json:"averageProbability"`
				Breakdown          *struct {
					AlmostCertain int64 `json:"almostCertain"`
					VeryLikely    int64 `json:"veryLikely"`
					Uncertain     int64 `json:"uncertain"`
					Unlikely      int64 `json:"unlikely"`
				} `json:"breakdown"`
				Species speciesNode `json:"species"`
			} `json:"topSpecies"`
		} `json:"station"`
	}
	if err := c.execute(ctx, topSpeciesQuery, variables, &resp); err != nil {
		return nil, err
	}

	rows := make([]TopSpeciesRow, 0, len(resp.Station.TopSpecies))
	for i := range resp.Station.TopSpecies {
		sp := &resp.Station.TopSpecies[i]
		row := TopSpeciesRow{
			SpeciesID:          sp.SpeciesID,
			CommonName:         sp.Species.CommonName,
			ScientificName:     sp.Species.ScientificName,
			ImageURL:           sp.Species.ImageURL,
			ThumbnailURL:       sp.Species.ThumbnailURL,
			Color:              sp.Species.Color,
			EbirdURL:           sp.Species.EbirdURL,
			WikipediaSummary:   sp.Species.WikipediaSummary,
			Count:              sp.Count,
			AverageProbability: sp.AverageProbability,
		}
		if sp.Breakdown != nil {
			row.AlmostCertain = sp.Breakdown.AlmostCertain
			row.VeryLikely = sp.Breakdown.VeryLikely
			row.Uncertain = sp.Breakdown.Uncertain
			row.Unlikely = sp.Breakdown.Unlikely
		}
		rows = append(rows, row)
	}

	logger.Debug("Fetched top species", "station_id", stationID, "count", len(rows))

	return rows, nil
}

// FetchSpeciesByIDs bulk-fetches metadata for a specific species id set via
// the allSpecies root query. Used to fill the gaps the station's topSpecies
// listing does not cover.
func (c *Client) FetchSpeciesByIDs(ctx context.Context, ids []int64) ([]SpeciesMeta, error) {
	if len(ids) == 0 {
		return []SpeciesMeta{}, nil
	}

	var resp struct {
		AllSpecies struct {
			Nodes []struct {
				ID int64 `json:"id"`
				speciesNode
			} `json:"nodes"`
		} `json:"allSpecies"`
	}
	if err := c.execute(ctx, speciesByIDsQuery, map[string]any{"ids": ids}, &resp); err != nil {
		return nil, err
	}

	rows := make([]SpeciesMeta, 0, len(resp.AllSpecies.Nodes))
	for i := range resp.AllSpecies.Nodes {
		node := &resp.AllSpecies.Nodes[i]
		rows = append(rows, SpeciesMeta{
			SpeciesID:        node.ID,
			CommonName:       node.CommonName,
			ScientificName:   node.ScientificName,
			ImageURL:         node.ImageURL,
			ThumbnailURL:     node.ThumbnailURL,
			Color:            node.Color,
			EbirdURL:         node.EbirdURL,
			WikipediaSummary: node.WikipediaSummary,
		})
	}

	logger.Debug("Fetched species by ids", "requested", len(ids), "returned", len(rows))

	return rows, nil
}

// FetchSpeciesProbabilities fetches the station's seasonal species model:
// per species, an array of 52 (or 53) weekly probability values, unpacked
// into one row per (speciesId, week) pair with week as the zero-based index
// into that array.
func (c *Client) FetchSpeciesProbabilities(ctx context.Context, stationID string) ([]SpeciesProbability, error) {
	stationID, err := c.ResolveStationID(ctx, stationID)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Station struct {
			Probabilities []struct {
				SpeciesID int64 `json:"speciesId"`
				Species   struct {
					CommonName string `json:"commonName"`
				} `json:"species"`
				Weeks []float64 `json:"weeks"`
			} `json:"probabilities"`
		} `json:"station"`
	}
	if err := c.execute(ctx, speciesProbabilitiesQuery, map[string]any{"id": stationID}, &resp); err != nil {
		return nil, err
	}

	var rows []SpeciesProbability
	for i := range resp.Station.Probabilities {
		sp := &resp.Station.Probabilities[i]
		for week, prob := range sp.Weeks {
			rows = append(rows, SpeciesProbability{
				SpeciesID:   sp.SpeciesID,
				CommonName:  sp.Species.CommonName,
				Week:        int32(week),
				Probability: prob,
			})
		}
	}

	logger.Debug("Fetched species probabilities",
		"station_id", stationID,
		"species", len(resp.Station.Probabilities),
		"rows", len(rows))

	return rows, nil
}
