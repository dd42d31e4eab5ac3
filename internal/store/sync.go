package store

import (
	"context"
	"sort"
	"time"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/parquetstore"
)

// SyncDetections incrementally syncs detections into the local cache.
//
// On first run it fetches all available detections, bounded below by
// earliestAt when the caller knows the station's earliest detection. On
// subsequent runs the maximum cached timestamp becomes the stop boundary:
// the API returns detections newest-first, so pagination stops as soon as a
// row at or before the boundary is seen.
//
// Returns the full merged detections table. An empty merge result is never
// written, preserving any prior cache file.
func (s *Store) SyncDetections(ctx context.Context, stationID string, earliestAt *time.Time) ([]birdweather.Detection, error) {
	if err := parquetstore.EnsureDir(s.dataDir); err != nil {
		return nil, err
	}

	var existing []birdweather.Detection
	var stopBefore *time.Time

	if parquetstore.Exists(s.DetectionsPath()) {
		var err error
		existing, err = parquetstore.Load[birdweather.Detection](s.DetectionsPath())
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			maxTS := maxDetectionTimestamp(existing)
			stopBefore = &maxTS
			logger.Info("Detections cache loaded",
				"rows", len(existing),
				"latest", maxTS)
		} else {
			logger.Info("Detections cache empty, fetching all")
		}
	} else {
		logger.Info("Detections cache not found, fetching all")
	}

	fetched, err := s.client.FetchDetections(ctx, stationID, birdweather.DetectionQueryOptions{
		PageSize:   s.sync.DetectionPageSize,
		MaxPages:   s.sync.DetectionMaxPages,
		StopBefore: stopBefore,
		EarliestAt: earliestAt,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched new detections", "rows", len(fetched))

	merged := mergeDetections(existing, fetched)
	if len(merged) > 0 {
		if err := parquetstore.Save(s.DetectionsPath(), merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// SyncEnvironment incrementally syncs environment sensor readings into the
// local cache. Unlike detections, this endpoint supports an explicit "from"
// filter and accumulates forward, so the fetch window is
// [maxCachedTimestamp + 1s, now] rather than a stop-before boundary.
func (s *Store) SyncEnvironment(ctx context.Context, stationID string) ([]birdweather.EnvironmentReading, error) {
	if err := parquetstore.EnsureDir(s.dataDir); err != nil {
		return nil, err
	}

	var existing []birdweather.EnvironmentReading
	var period *birdweather.Period

	if parquetstore.Exists(s.EnvironmentPath()) {
		var err error
		existing, err = parquetstore.Load[birdweather.EnvironmentReading](s.EnvironmentPath())
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			maxTS := existing[0].Timestamp
			for _, row := range existing[1:] {
				if row.Timestamp.After(maxTS) {
					maxTS = row.Timestamp
				}
			}
			period = &birdweather.Period{
				From: maxTS.Add(time.Second).UTC().Format("2006-01-02T15:04:05Z"),
				To:   s.now().UTC().Format("2006-01-02T15:04:05Z"),
			}
		}
	}

	fetched, err := s.client.FetchEnvironmentHistory(ctx, stationID, period,
		s.sync.EnvironmentPageSize, s.sync.EnvironmentMaxPages)
	if err != nil {
		return nil, err
	}
	logger.Info("Fetched new environment readings", "rows", len(fetched))

	merged := mergeEnvironment(existing, fetched)
	if len(merged) > 0 {
		if err := parquetstore.Save(s.EnvironmentPath(), merged); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// SyncSpeciesMeta ensures species metadata is cached for every species
// present in detections.
//
// The missing set is the species ids seen in detections but absent from the
// cache, unioned with cached species whose ebirdUrl is still null (recovery
// from previously incomplete fetches). When the missing set is non-empty or
// no cache exists, the station's topSpecies listing supplies the bulk of
// the metadata and the allSpecies by-id lookup fills whatever that listing
// does not cover. The first occurrence wins when both sources carry the
// same species.
func (s *Store) SyncSpeciesMeta(ctx context.Context, stationID string, detections []birdweather.Detection) ([]birdweather.SpeciesMeta, error) {
	if err := parquetstore.EnsureDir(s.dataDir); err != nil {
		return nil, err
	}

	var existing []birdweather.SpeciesMeta
	cacheExists := parquetstore.Exists(s.SpeciesMetaPath())
	if cacheExists {
		var err error
		existing, err = parquetstore.Load[birdweather.SpeciesMeta](s.SpeciesMetaPath())
		if err != nil {
			return nil, err
		}
	}

	detectionIDs := make(map[int64]struct{})
	for _, d := range detections {
		detectionIDs[d.SpeciesID] = struct{}{}
	}
	cachedIDs := make(map[int64]struct{}, len(existing))
	for _, m := range existing {
		cachedIDs[m.SpeciesID] = struct{}{}
	}

	missing := make(map[int64]struct{})
	for id := range detectionIDs {
		if _, ok := cachedIDs[id]; !ok {
			missing[id] = struct{}{}
		}
	}
	// Cached species with a null ebirdUrl count as missing so an earlier
	// incomplete fetch gets another chance.
	for _, m := range existing {
		if m.EbirdURL == nil {
			missing[m.SpeciesID] = struct{}{}
		}
	}

	if len(missing) == 0 && cacheExists && len(existing) > 0 {
		return existing, nil
	}

	logger.Info("Refreshing species metadata",
		"missing", len(missing),
		"cached", len(existing))

	bulk, err := s.client.FetchTopSpecies(ctx, stationID, nil, topSpeciesBulkLimit)
	if err != nil {
		return nil, err
	}

	var meta []birdweather.SpeciesMeta
	switch {
	case len(bulk) > 0:
		meta = make([]birdweather.SpeciesMeta, 0, len(bulk))
		for i := range bulk {
			meta = append(meta, speciesMetaFromTopSpecies(&bulk[i]))
		}
		meta = dedupSpeciesMeta(meta)
	case len(existing) > 0:
		meta = existing
	default:
		meta = []birdweather.SpeciesMeta{}
	}

	// Fill gaps: by-id lookup for detection species the bulk listing does
	// not cover.
	metaIDs := make(map[int64]struct{}, len(meta))
	for _, m := range meta {
		metaIDs[m.SpeciesID] = struct{}{}
	}
	var stillMissing []int64
	for id := range detectionIDs {
		if _, ok := metaIDs[id]; !ok {
			stillMissing = append(stillMissing, id)
		}
	}
	sort.Slice(stillMissing, func(i, j int) bool { return stillMissing[i] < stillMissing[j] })

	if len(stillMissing) > 0 {
		logger.Info("Fetching metadata for additional species via allSpecies",
			"count", len(stillMissing))
		extra, err := s.client.FetchSpeciesByIDs(ctx, stillMissing)
		if err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			meta = dedupSpeciesMeta(append(meta, extra...))
		}
	}

	if err := parquetstore.Save(s.SpeciesMetaPath(), meta); err != nil {
		return nil, err
	}
	return meta, nil
}

// SyncSpeciesProbabilities syncs the station's seasonal species model. The
// model changes slowly, so a cache younger than the configured TTL is
// returned as-is with no network call. A stale or missing cache triggers a
// fresh fetch that replaces the file entirely; an empty fetch result leaves
// any stale file on disk untouched.
func (s *Store) SyncSpeciesProbabilities(ctx context.Context, stationID string) ([]birdweather.SpeciesProbability, error) {
	if err := parquetstore.EnsureDir(s.dataDir); err != nil {
		return nil, err
	}

	if parquetstore.Exists(s.ProbabilitiesPath()) {
		age, err := parquetstore.Age(s.ProbabilitiesPath())
		if err != nil {
			return nil, err
		}
		if age < s.sync.ProbabilityTTL {
			logger.Debug("Species probabilities cache fresh", "age", age)
			return parquetstore.Load[birdweather.SpeciesProbability](s.ProbabilitiesPath())
		}
		logger.Info("Species probabilities cache stale, re-fetching", "age", age)
	}

	probs, err := s.client.FetchSpeciesProbabilities(ctx, stationID)
	if err != nil {
		return nil, err
	}
	if len(probs) > 0 {
		if err := parquetstore.Save(s.ProbabilitiesPath(), probs); err != nil {
			return nil, err
		}
	}
	return probs, nil
}

// SyncResult carries the row counts of one full sync pass.
type SyncResult struct {
	Detections    int
	Environment   int
	SpeciesMeta   int
	Probabilities int
}

// SyncAll runs all four syncs in dependency order: detections first, since
// the species metadata sync derives its missing set from them.
func (s *Store) SyncAll(ctx context.Context, stationID string, earliestAt *time.Time) (*SyncResult, error) {
	detections, err := s.SyncDetections(ctx, stationID, earliestAt)
	if err != nil {
		return nil, err
	}
	environment, err := s.SyncEnvironment(ctx, stationID)
	if err != nil {
		return nil, err
	}
	meta, err := s.SyncSpeciesMeta(ctx, stationID, detections)
	if err != nil {
		return nil, err
	}
	probs, err := s.SyncSpeciesProbabilities(ctx, stationID)
	if err != nil {
		return nil, err
	}
	return &SyncResult{
		Detections:    len(detections),
		Environment:   len(environment),
		SpeciesMeta:   len(meta),
		Probabilities: len(probs),
	}, nil
}

// maxDetectionTimestamp returns the maximum timestamp in rows. rows must be
// non-empty.
func maxDetectionTimestamp(rows []birdweather.Detection) time.Time {
	maxTS := rows[0].Timestamp
	for _, row := range rows[1:] {
		if row.Timestamp.After(maxTS) {
			maxTS = row.Timestamp
		}
	}
	return maxTS
}

// speciesMetaFromTopSpecies projects a top-species row onto the metadata
// columns.
func speciesMetaFromTopSpecies(row *birdweather.TopSpeciesRow) birdweather.SpeciesMeta {
	return birdweather.SpeciesMeta{
		SpeciesID:        row.SpeciesID,
		CommonName:       row.CommonName,
		ScientificName:   row.ScientificName,
		ImageURL:         row.ImageURL,
		ThumbnailURL:     row.ThumbnailURL,
		Color:            row.Color,
		EbirdURL:         row.EbirdURL,
		WikipediaSummary: row.WikipediaSummary,
	}
}
