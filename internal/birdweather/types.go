package birdweather

import "time"

// Certainty buckets reported by the BirdWeather API for a detection.
const (
	CertaintyAlmostCertain = "almost_certain"
	CertaintyVeryLikely    = "very_likely"
	CertaintyUncertain     = "uncertain"
	CertaintyUnlikely      = "unlikely"
)

// Detection is one classified bird identification event. Rows are immutable
// upstream; the local cache only grows by appending newly observed ids.
type Detection struct {
	ID             string    `parquet:"id" json:"id"`
	Timestamp      time.Time `parquet:"timestamp" json:"timestamp"`
	SpeciesID      int64     `parquet:"speciesId" json:"speciesId"`
	CommonName     string    `parquet:"commonName" json:"commonName"`
	ScientificName string    `parquet:"scientificName" json:"scientificName"`
	Confidence     float64   `parquet:"confidence" json:"confidence"`
	Probability    *float64  `parquet:"probability,optional" json:"probability"`
	Score          float64   `parquet:"score" json:"score"`
	Certainty      string    `parquet:"certainty" json:"certainty"`
}

// EnvironmentReading is one station sensor sample. All sensor fields are
// nullable; the dedup key is the timestamp.
type EnvironmentReading struct {
	Timestamp          time.Time `parquet:"timestamp" json:"timestamp"`
	Temperature        *float64  `parquet:"temperature,optional" json:"temperature"`
	Humidity           *float64  `parquet:"humidity,optional" json:"humidity"`
	BarometricPressure *float64  `parquet:"barometricPressure,optional" json:"barometricPressure"`
	SoundPressureLevel *float64  `parquet:"soundPressureLevel,optional" json:"soundPressureLevel"`
	AQI                *float64  `parquet:"aqi,optional" json:"aqi"`
	ECO2               *float64  `parquet:"eco2,optional" json:"eco2"`
	VOC                *float64  `parquet:"voc,optional" json:"voc"`
}

// SpeciesMeta is descriptive species metadata keyed by species id. The
// ebirdUrl field is filled in lazily on re-sync when an earlier fetch left
// it null.
type SpeciesMeta struct {
	SpeciesID        int64   `parquet:"speciesId" json:"speciesId"`
	CommonName       string  `parquet:"commonName" json:"commonName"`
	ScientificName   string  `parquet:"scientificName" json:"scientificName"`
	ImageURL         *string `parquet:"imageUrl,optional" json:"imageUrl"`
	ThumbnailURL     *string `parquet:"thumbnailUrl,optional" json:"thumbnailUrl"`
	Color            *string `parquet:"color,optional" json:"color"`
	EbirdURL         *string `parquet:"ebirdUrl,optional" json:"ebirdUrl"`
	WikipediaSummary *string `parquet:"wikipediaSummary,optional" json:"wikipediaSummary"`
}

// SpeciesProbability is one week of the station's seasonal species model,
// keyed by (speciesId, week) with week in [0,52].
type SpeciesProbability struct {
	SpeciesID   int64   `parquet:"speciesId" json:"speciesId"`
	CommonName  string  `parquet:"commonName" json:"commonName"`
	Week        int32   `parquet:"week" json:"week"`
	Probability float64 `parquet:"probability" json:"probability"`
}

// TopSpeciesRow is one species in a top-species ranking, remote or locally
// computed. The breakdown counts are flattened into row-level columns.
type TopSpeciesRow struct {
	SpeciesID          int64    `json:"speciesId"`
	CommonName         string   `json:"commonName"`
	ScientificName     string   `json:"scientificName"`
	ImageURL           *string  `json:"imageUrl"`
	ThumbnailURL       *string  `json:"thumbnailUrl"`
	Color              *string  `json:"color"`
	EbirdURL           *string  `json:"ebirdUrl"`
	WikipediaSummary   *string  `json:"wikipediaSummary"`
	Count              int64    `json:"count"`
	AlmostCertain      int64    `json:"almostCertain"`
	VeryLikely         int64    `json:"veryLikely"`
	Uncertain          int64    `json:"uncertain"`
	Unlikely           int64    `json:"unlikely"`
	AverageProbability *float64 `json:"averageProbability"`
}

// DailyCountRow is one (date, species) cell of the daily detection counts,
// with the date's total attached to every row for that date.
type DailyCountRow struct {
	Date       string `json:"date"` // YYYY-MM-DD
	DayOfYear  int    `json:"dayOfYear"`
	DailyTotal int64  `json:"dailyTotal"`
	SpeciesID  int64  `json:"speciesId"`
	CommonName string `json:"commonName"`
	Count      int64  `json:"count"`
}

// TimeOfDayRow is one (species, hour) bin with the species' total across
// all hours attached.
type TimeOfDayRow struct {
	SpeciesID  int64  `json:"speciesId"`
	CommonName string `json:"commonName"`
	TotalCount int64  `json:"totalCount"`
	Hour       int    `json:"hour"` // 0-23
	Count      int64  `json:"count"`
}

// Period is a caller-specified time window, either a relative count+unit
// (e.g. 7 day) or explicit from/to bounds. Matches the API's InputDuration.
type Period struct {
	Count int    `json:"count,omitempty"`
	Unit  string `json:"unit,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// LastDays returns a relative period covering the last n days.
func LastDays(n int) *Period {
	return &Period{Count: n, Unit: "day"}
}

// Coordinates is a station location.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// StationCounts are the station's lifetime totals.
type StationCounts struct {
	Detections int64 `json:"detections"`
	Species    int64 `json:"species"`
}

// CurrentWeather is the station's current weather report.
type CurrentWeather struct {
	Temp        *float64 `json:"temp"`
	FeelsLike   *float64 `json:"feelsLike"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
	Description *string  `json:"description"`
	WindSpeed   *float64 `json:"windSpeed"`
	Cloudiness  *float64 `json:"cloudiness"`
	Sunrise     *string  `json:"sunrise"`
	Sunset      *string  `json:"sunset"`
}

// StationOverview is station metadata with current weather and the latest
// environment sensor reading.
type StationOverview struct {
	Name                string              `json:"name"`
	Location            string              `json:"location"`
	Timezone            string              `json:"timezone"`
	Type                string              `json:"type"`
	Coords              *Coordinates        `json:"coords"`
	Counts              StationCounts       `json:"counts"`
	EarliestDetectionAt string              `json:"earliestDetectionAt"`
	LatestDetectionAt   string              `json:"latestDetectionAt"`
	Weather             *CurrentWeather     `json:"weather"`
	Environment         *EnvironmentReading `json:"-"`
}

// pageInfo is the cursor pagination envelope shared by all paginated
// listings.
type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}
