package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/parquetstore"
)

// testNow is the fixed clock all store tests run on.
var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

// fakeClient is an in-memory birdweather.Interface that serves canned data
// and records what each sync asked for.
type fakeClient struct {
	detections    []birdweather.Detection
	environment   []birdweather.EnvironmentReading
	topSpecies    []birdweather.TopSpeciesRow
	speciesByID   map[int64]birdweather.SpeciesMeta
	probabilities []birdweather.SpeciesProbability

	detectionCalls    int
	lastDetectionOpts birdweather.DetectionQueryOptions
	environmentCalls  int
	lastEnvPeriod     *birdweather.Period
	topSpeciesCalls   int
	lastTopLimit      int
	byIDCalls         int
	lastIDs           []int64
	probabilityCalls  int
}

func (f *fakeClient) ResolveStationID(_ context.Context, token string) (string, error) {
	return token, nil
}

// FetchDetections mimics the real client's boundary behavior: only rows
// strictly newer than StopBefore come back.
func (f *fakeClient) FetchDetections(_ context.Context, _ string, opts birdweather.DetectionQueryOptions) ([]birdweather.Detection, error) {
	f.detectionCalls++
	f.lastDetectionOpts = opts

	var out []birdweather.Detection
	for _, d := range f.detections {
		if opts.StopBefore != nil && !d.Timestamp.After(*opts.StopBefore) {
			continue
		}
		if opts.EarliestAt != nil && d.Timestamp.Before(*opts.EarliestAt) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// FetchEnvironmentHistory mimics the server-side from/to window.
func (f *fakeClient) FetchEnvironmentHistory(_ context.Context, _ string, period *birdweather.Period, _, _ int) ([]birdweather.EnvironmentReading, error) {
	f.environmentCalls++
	f.lastEnvPeriod = period

	if period == nil || period.From == "" {
		return f.environment, nil
	}
	from, err := time.Parse(time.RFC3339, period.From)
	if err != nil {
		return nil, err
	}
	var out []birdweather.EnvironmentReading
	for _, r := range f.environment {
		if !r.Timestamp.Before(from) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeClient) FetchTopSpecies(_ context.Context, _ string, _ *birdweather.Period, limit int) ([]birdweather.TopSpeciesRow, error) {
	f.topSpeciesCalls++
	f.lastTopLimit = limit
	return f.topSpecies, nil
}

func (f *fakeClient) FetchSpeciesByIDs(_ context.Context, ids []int64) ([]birdweather.SpeciesMeta, error) {
	f.byIDCalls++
	f.lastIDs = ids

	var out []birdweather.SpeciesMeta
	for _, id := range ids {
		if m, ok := f.speciesByID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeClient) FetchSpeciesProbabilities(_ context.Context, _ string) ([]birdweather.SpeciesProbability, error) {
	f.probabilityCalls++
	return f.probabilities, nil
}

func (f *fakeClient) FetchStationOverview(_ context.Context, _ string) (*birdweather.StationOverview, error) {
	return &birdweather.StationOverview{}, nil
}

func (f *fakeClient) FetchDailyDetectionCounts(_ context.Context, _ string, _ *birdweather.Period) ([]birdweather.DailyCountRow, error) {
	return nil, nil
}

func (f *fakeClient) FetchTimeOfDayCounts(_ context.Context, _ string, _ *birdweather.Period) ([]birdweather.TimeOfDayRow, error) {
	return nil, nil
}

func (f *fakeClient) Close() {}

var _ birdweather.Interface = (*fakeClient)(nil)

// newTestStore builds a store over a temp directory with a fixed clock.
func newTestStore(t *testing.T, client *fakeClient) *Store {
	t.Helper()
	st := New(t.TempDir(), client, conf.SyncSettings{})
	st.now = func() time.Time { return testNow }
	return st
}

// seedDetections writes rows to the detections cache file directly.
func seedDetections(t *testing.T, st *Store, rows []birdweather.Detection) {
	t.Helper()
	require.NoError(t, parquetstore.EnsureDir(st.dataDir))
	require.NoError(t, parquetstore.Save(st.DetectionsPath(), rows))
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func detection(id string, ts time.Time, speciesID int64, commonName string) birdweather.Detection {
	return birdweather.Detection{
		ID:             id,
		Timestamp:      ts,
		SpeciesID:      speciesID,
		CommonName:     commonName,
		ScientificName: "Testus " + commonName,
		Confidence:     0.9,
		Probability:    fptr(0.8),
		Score:          5,
		Certainty:      birdweather.CertaintyAlmostCertain,
	}
}
