package store

import (
	"sort"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
)

// mergeDetections concatenates cached and freshly fetched detections,
// deduplicates by detection id keeping the last-occurring row, and sorts
// ascending by timestamp. Merging the same fetch twice is idempotent.
func mergeDetections(existing, fetched []birdweather.Detection) []birdweather.Detection {
	if len(fetched) == 0 {
		return existing
	}
	if len(existing) == 0 {
		merged := append([]birdweather.Detection(nil), fetched...)
		sortDetections(merged)
		return merged
	}

	// Concatenation order matters: fetched rows come after cached rows, so
	// keep-last means a re-observed id takes the freshly fetched values.
	seen := make(map[string]birdweather.Detection, len(existing)+len(fetched))
	for _, row := range existing {
		seen[row.ID] = row
	}
	for _, row := range fetched {
		seen[row.ID] = row
	}

	merged := make([]birdweather.Detection, 0, len(seen))
	for _, row := range seen {
		merged = append(merged, row)
	}
	sortDetections(merged)
	return merged
}

// sortDetections orders rows ascending by timestamp, breaking ties by id
// for a deterministic cache layout.
func sortDetections(rows []birdweather.Detection) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Timestamp.Equal(rows[j].Timestamp) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].Timestamp.Before(rows[j].Timestamp)
	})
}

// mergeEnvironment concatenates cached and freshly fetched environment
// readings, deduplicates by timestamp keeping the last-observed reading,
// and sorts ascending by timestamp.
func mergeEnvironment(existing, fetched []birdweather.EnvironmentReading) []birdweather.EnvironmentReading {
	if len(fetched) == 0 {
		return existing
	}

	seen := make(map[int64]birdweather.EnvironmentReading, len(existing)+len(fetched))
	order := make([]int64, 0, len(existing)+len(fetched))
	for _, row := range existing {
		key := row.Timestamp.UnixNano()
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = row
	}
	for _, row := range fetched {
		key := row.Timestamp.UnixNano()
		if _, ok := seen[key]; !ok {
			order = append(order, key)
		}
		seen[key] = row
	}

	merged := make([]birdweather.EnvironmentReading, 0, len(seen))
	for _, key := range order {
		merged = append(merged, seen[key])
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// dedupSpeciesMeta removes duplicate species ids keeping the first
// occurrence. When bulk and by-id results disagree, the bulk row wins
// because it is concatenated first.
func dedupSpeciesMeta(rows []birdweather.SpeciesMeta) []birdweather.SpeciesMeta {
	seen := make(map[int64]struct{}, len(rows))
	out := rows[:0:0]
	for _, row := range rows {
		if _, ok := seen[row.SpeciesID]; ok {
			continue
		}
		seen[row.SpeciesID] = struct{}{}
		out = append(out, row)
	}
	return out
}
