// Package conf defines the application settings and loads them from
// defaults, an optional config file, a local .env file, and environment
// variables.
package conf

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tphakala/birdweather-sync/internal/errors"
)

// StationSettings identifies the BirdWeather station being synced.
type StationSettings struct {
	ID    string // station token/slug or numeric id, from BIRDWEATHER_STATION_ID
	Token string // bearer token, falls back to the station ID value when unset
}

// APISettings contains settings for the BirdWeather GraphQL endpoint.
type APISettings struct {
	URL        string        // GraphQL endpoint URL
	Timeout    time.Duration // per-request HTTP timeout
	MaxRetries int           // attempt budget for transient transport failures
}

// SyncSettings contains pagination and cache tunables for the sync store.
type SyncSettings struct {
	DetectionPageSize   int           // detections per page, API max is 100
	DetectionMaxPages   int           // page cap for a single detections sync
	EnvironmentPageSize int           // environment readings per page
	EnvironmentMaxPages int           // page cap for a single environment sync
	ProbabilityTTL      time.Duration // age threshold before species probabilities are re-fetched
}

// Settings contains all application settings.
type Settings struct {
	Debug   bool   // true to enable debug logging
	DataDir string // local cache directory, created on demand
	Station StationSettings
	API     APISettings
	Sync    SyncSettings
}

func setDefaults() {
	viper.SetDefault("debug", false)
	viper.SetDefault("datadir", "data")
	viper.SetDefault("api.url", "https://app.birdweather.com/graphql")
	viper.SetDefault("api.timeout", 120*time.Second)
	viper.SetDefault("api.maxretries", 3)
	viper.SetDefault("sync.detectionpagesize", 100)
	viper.SetDefault("sync.detectionmaxpages", 1000)
	viper.SetDefault("sync.environmentpagesize", 1000)
	viper.SetDefault("sync.environmentmaxpages", 400)
	viper.SetDefault("sync.probabilityttl", 7*24*time.Hour)
}

// Load reads settings from defaults, an optional config.yaml in the working
// directory, a local .env file, and the environment. Environment variables
// BIRDWEATHER_STATION_ID and BIRDWEATHER_TOKEN take precedence over the
// config file.
func Load() (*Settings, error) {
	// The original deployment keeps credentials in a .env file; a missing
	// file is not an error.
	_ = godotenv.Load()

	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/birdweather-sync")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Newf("failed to read config file: %w", err).
				Category(errors.CategoryConfiguration).
				Component("conf").
				Build()
		}
	}

	if err := viper.BindEnv("station.id", "BIRDWEATHER_STATION_ID"); err != nil {
		return nil, errors.Newf("failed to bind station id env: %w", err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if err := viper.BindEnv("station.token", "BIRDWEATHER_TOKEN"); err != nil {
		return nil, errors.Newf("failed to bind station token env: %w", err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.Newf("failed to unmarshal settings: %w", err).
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}

	// Fallback chain: explicit token, else the station identifier value.
	if settings.Station.Token == "" {
		settings.Station.Token = settings.Station.ID
	}

	return settings, nil
}

// Validate checks that settings required before any network call are
// present.
func (s *Settings) Validate() error {
	if s.Station.ID == "" {
		return errors.Newf("BIRDWEATHER_STATION_ID not set; add it to your .env file or config.yaml").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if s.API.URL == "" {
		return errors.Newf("api.url must not be empty").
			Category(errors.CategoryConfiguration).
			Component("conf").
			Build()
	}
	if s.Sync.DetectionPageSize <= 0 || s.Sync.DetectionPageSize > 100 {
		return errors.Newf("sync.detectionpagesize must be between 1 and 100, got %d", s.Sync.DetectionPageSize).
			Category(errors.CategoryValidation).
			Component("conf").
			Build()
	}
	return nil
}
