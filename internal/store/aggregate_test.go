package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
)

// aggregateFixture builds a detection set spanning two days and three
// species with a mix of certainty buckets.
func aggregateFixture() []birdweather.Detection {
	day1 := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	d := func(id string, ts time.Time, speciesID int64, name, certainty string, prob *float64) birdweather.Detection {
		row := detection(id, ts, speciesID, name)
		row.Certainty = certainty
		row.Probability = prob
		return row
	}

	return []birdweather.Detection{
		d("a1", day1.Add(5*time.Hour), 144, "Eurasian Blue Tit", birdweather.CertaintyAlmostCertain, fptr(0.9)),
		d("a2", day1.Add(5*time.Hour+30*time.Minute), 144, "Eurasian Blue Tit", birdweather.CertaintyVeryLikely, fptr(0.7)),
		d("a3", day1.Add(6*time.Hour), 144, "Eurasian Blue Tit", birdweather.CertaintyUncertain, nil),
		d("b1", day1.Add(7*time.Hour), 98, "Great Tit", birdweather.CertaintyAlmostCertain, fptr(0.8)),
		d("b2", day2.Add(5*time.Hour), 98, "Great Tit", birdweather.CertaintyUnlikely, fptr(0.2)),
		d("c1", day2.Add(12*time.Hour), 77, "Common Chaffinch", birdweather.CertaintyVeryLikely, fptr(0.6)),
	}
}

func TestComputeTopSpecies(t *testing.T) {
	st := newTestStore(t, &fakeClient{})
	meta := []birdweather.SpeciesMeta{
		{SpeciesID: 144, CommonName: "Blue Tit (meta)", ImageURL: sptr("https://img.example/144.jpg"),
			EbirdURL: sptr("https://ebird.org/species/blutit")},
	}

	rows := st.ComputeTopSpecies(aggregateFixture(), meta, 0, 100)
	require.Len(t, rows, 3)

	// Ranked by count descending.
	top := rows[0]
	assert.Equal(t, int64(144), top.SpeciesID)
	assert.Equal(t, int64(3), top.Count)
	assert.Equal(t, int64(1), top.AlmostCertain)
	assert.Equal(t, int64(1), top.VeryLikely)
	assert.Equal(t, int64(1), top.Uncertain)
	assert.Equal(t, int64(0), top.Unlikely)

	// Mean of the non-null probabilities only.
	require.NotNil(t, top.AverageProbability)
	assert.InDelta(t, 0.8, *top.AverageProbability, 1e-9)

	// Metadata joins in, but detection-derived names stay authoritative.
	assert.Equal(t, "Eurasian Blue Tit", top.CommonName)
	require.NotNil(t, top.ImageURL)
	assert.Equal(t, "https://img.example/144.jpg", *top.ImageURL)

	// Species without metadata keep null metadata fields.
	assert.Equal(t, int64(98), rows[1].SpeciesID)
	assert.Equal(t, int64(2), rows[1].Count)
	assert.Nil(t, rows[1].ImageURL)
}

func TestComputeTopSpecies_LimitAndPeriod(t *testing.T) {
	st := newTestStore(t, &fakeClient{})

	rows := st.ComputeTopSpecies(aggregateFixture(), nil, 0, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(144), rows[0].SpeciesID)
	assert.Equal(t, int64(98), rows[1].SpeciesID)

	// testNow is 2025-06-10T12:00Z; a 1-day window keeps only detections
	// at or after 2025-06-09T12:00Z.
	rows = st.ComputeTopSpecies(aggregateFixture(), nil, 1, 100)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(77), rows[0].SpeciesID)
	assert.Equal(t, int64(1), rows[0].Count)
}

func TestComputeTopSpecies_EmptyInput(t *testing.T) {
	st := newTestStore(t, &fakeClient{})
	rows := st.ComputeTopSpecies(nil, nil, 0, 100)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestComputeDailyDetectionCounts(t *testing.T) {
	st := newTestStore(t, &fakeClient{})

	rows := st.ComputeDailyDetectionCounts(aggregateFixture(), 0)
	require.Len(t, rows, 4)

	// Day totals equal the sum of that day's per-species counts.
	perDate := map[string]int64{}
	totals := map[string]int64{}
	for _, r := range rows {
		perDate[r.Date] += r.Count
		totals[r.Date] = r.DailyTotal
	}
	for date, sum := range perDate {
		assert.Equal(t, totals[date], sum, "date %s", date)
	}

	// Sorted by date then common name.
	assert.Equal(t, "2025-06-08", rows[0].Date)
	assert.Equal(t, "Eurasian Blue Tit", rows[0].CommonName)
	assert.Equal(t, int64(3), rows[0].Count)
	assert.Equal(t, int64(4), rows[0].DailyTotal)
	assert.Equal(t, 159, rows[0].DayOfYear)
	assert.Equal(t, "2025-06-09", rows[2].Date)
	assert.Equal(t, "Common Chaffinch", rows[2].CommonName)
}

func TestComputeDailyDetectionCounts_EmptyInput(t *testing.T) {
	st := newTestStore(t, &fakeClient{})
	rows := st.ComputeDailyDetectionCounts(nil, 0)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestComputeTimeOfDayCounts(t *testing.T) {
	st := newTestStore(t, &fakeClient{})

	rows := st.ComputeTimeOfDayCounts(aggregateFixture())

	// Hour bins per species sum to that species' total.
	perSpecies := map[int64]int64{}
	totals := map[int64]int64{}
	for _, r := range rows {
		assert.GreaterOrEqual(t, r.Hour, 0)
		assert.LessOrEqual(t, r.Hour, 23)
		perSpecies[r.SpeciesID] += r.Count
		totals[r.SpeciesID] = r.TotalCount
	}
	for id, sum := range perSpecies {
		assert.Equal(t, totals[id], sum, "species %d", id)
	}

	// Species 144 has two detections in hour 5 and one in hour 6.
	var tit144 []birdweather.TimeOfDayRow
	for _, r := range rows {
		if r.SpeciesID == 144 {
			tit144 = append(tit144, r)
		}
	}
	require.Len(t, tit144, 2)
	assert.Equal(t, 5, tit144[0].Hour)
	assert.Equal(t, int64(2), tit144[0].Count)
	assert.Equal(t, 6, tit144[1].Hour)
	assert.Equal(t, int64(1), tit144[1].Count)
	assert.Equal(t, int64(3), tit144[0].TotalCount)
}

func TestComputeTimeOfDayCounts_EmptyInput(t *testing.T) {
	st := newTestStore(t, &fakeClient{})
	rows := st.ComputeTimeOfDayCounts(nil)
	require.NotNil(t, rows)
	assert.Empty(t, rows)
}
