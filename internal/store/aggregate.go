package store

import (
	"sort"
	"time"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
)

// ComputeTopSpecies computes the top-species ranking from cached
// detections, matching the schema of the remote topSpecies query.
//
// periodDays > 0 restricts the input to detections from the last
// periodDays days; limit caps the number of species (default 100). Species
// metadata is left-joined on speciesId, excluding its name columns so the
// detection-derived names are never overwritten; species without metadata
// keep null metadata fields. Empty input yields an empty, non-nil result.
func (s *Store) ComputeTopSpecies(detections []birdweather.Detection, speciesMeta []birdweather.SpeciesMeta, periodDays, limit int) []birdweather.TopSpeciesRow {
	if limit <= 0 {
		limit = 100
	}
	detections = s.filterByPeriod(detections, periodDays)
	if len(detections) == 0 {
		return []birdweather.TopSpeciesRow{}
	}

	type speciesAgg struct {
		row       birdweather.TopSpeciesRow
		probSum   float64
		probCount int64
	}

	aggs := make(map[int64]*speciesAgg)
	var order []int64
	for i := range detections {
		d := &detections[i]
		agg, ok := aggs[d.SpeciesID]
		if !ok {
			agg = &speciesAgg{row: birdweather.TopSpeciesRow{
				SpeciesID:      d.SpeciesID,
				CommonName:     d.CommonName,
				ScientificName: d.ScientificName,
			}}
			aggs[d.SpeciesID] = agg
			order = append(order, d.SpeciesID)
		}
		agg.row.Count++
		if d.Probability != nil {
			agg.probSum += *d.Probability
			agg.probCount++
		}
		switch d.Certainty {
		case birdweather.CertaintyAlmostCertain:
			agg.row.AlmostCertain++
		case birdweather.CertaintyVeryLikely:
			agg.row.VeryLikely++
		case birdweather.CertaintyUncertain:
			agg.row.Uncertain++
		case birdweather.CertaintyUnlikely:
			agg.row.Unlikely++
		}
	}

	rows := make([]birdweather.TopSpeciesRow, 0, len(aggs))
	for _, id := range order {
		agg := aggs[id]
		if agg.probCount > 0 {
			mean := agg.probSum / float64(agg.probCount)
			agg.row.AverageProbability = &mean
		}
		rows = append(rows, agg.row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].SpeciesID < rows[j].SpeciesID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	// Left-join metadata, excluding its name columns: the names derived
	// from detections stay authoritative.
	metaByID := make(map[int64]*birdweather.SpeciesMeta, len(speciesMeta))
	for i := range speciesMeta {
		metaByID[speciesMeta[i].SpeciesID] = &speciesMeta[i]
	}
	for i := range rows {
		if m, ok := metaByID[rows[i].SpeciesID]; ok {
			rows[i].ImageURL = m.ImageURL
			rows[i].ThumbnailURL = m.ThumbnailURL
			rows[i].Color = m.Color
			rows[i].EbirdURL = m.EbirdURL
			rows[i].WikipediaSummary = m.WikipediaSummary
		}
	}

	return rows
}

// ComputeDailyDetectionCounts computes per-day, per-species detection
// counts from cached detections, matching the schema of the remote
// dailyDetectionCounts query: every row carries its date's total alongside
// the per-species count. Sorted by (date, commonName).
func (s *Store) ComputeDailyDetectionCounts(detections []birdweather.Detection, periodDays int) []birdweather.DailyCountRow {
	detections = s.filterByPeriod(detections, periodDays)
	if len(detections) == 0 {
		return []birdweather.DailyCountRow{}
	}

	type dayKey struct {
		date      string
		speciesID int64
	}

	counts := make(map[dayKey]*birdweather.DailyCountRow)
	totals := make(map[string]int64)
	for i := range detections {
		d := &detections[i]
		ts := d.Timestamp.UTC()
		date := ts.Format("2006-01-02")
		key := dayKey{date: date, speciesID: d.SpeciesID}
		row, ok := counts[key]
		if !ok {
			row = &birdweather.DailyCountRow{
				Date:       date,
				DayOfYear:  ts.YearDay(),
				SpeciesID:  d.SpeciesID,
				CommonName: d.CommonName,
			}
			counts[key] = row
		}
		row.Count++
		totals[date]++
	}

	rows := make([]birdweather.DailyCountRow, 0, len(counts))
	for _, row := range counts {
		row.DailyTotal = totals[row.Date]
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].CommonName != rows[j].CommonName {
			return rows[i].CommonName < rows[j].CommonName
		}
		return rows[i].SpeciesID < rows[j].SpeciesID
	})
	return rows
}

// ComputeTimeOfDayCounts computes detection counts binned by hour of day
// (0-23) from cached detections, matching the schema of the remote
// timeOfDayDetectionCounts query: every bin carries its species' total
// across all hours. Sorted by (speciesId, hour).
func (s *Store) ComputeTimeOfDayCounts(detections []birdweather.Detection) []birdweather.TimeOfDayRow {
	if len(detections) == 0 {
		return []birdweather.TimeOfDayRow{}
	}

	type hourKey struct {
		speciesID int64
		hour      int
	}

	bins := make(map[hourKey]*birdweather.TimeOfDayRow)
	totals := make(map[int64]int64)
	for i := range detections {
		d := &detections[i]
		hour := d.Timestamp.UTC().Hour()
		key := hourKey{speciesID: d.SpeciesID, hour: hour}
		row, ok := bins[key]
		if !ok {
			row = &birdweather.TimeOfDayRow{
				SpeciesID:  d.SpeciesID,
				CommonName: d.CommonName,
				Hour:       hour,
			}
			bins[key] = row
		}
		row.Count++
		totals[d.SpeciesID]++
	}

	rows := make([]birdweather.TimeOfDayRow, 0, len(bins))
	for _, row := range bins {
		row.TotalCount = totals[row.SpeciesID]
		rows = append(rows, *row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SpeciesID != rows[j].SpeciesID {
			return rows[i].SpeciesID < rows[j].SpeciesID
		}
		return rows[i].Hour < rows[j].Hour
	})
	return rows
}

// filterByPeriod restricts detections to timestamp >= now - periodDays
// days. periodDays <= 0 means no filtering.
func (s *Store) filterByPeriod(detections []birdweather.Detection, periodDays int) []birdweather.Detection {
	if periodDays <= 0 {
		return detections
	}
	cutoff := s.now().Add(-time.Duration(periodDays) * 24 * time.Hour)
	filtered := make([]birdweather.Detection, 0, len(detections))
	for _, d := range detections {
		if !d.Timestamp.Before(cutoff) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}
