package conf

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/birdweather-sync/internal/errors"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("BIRDWEATHER_STATION_ID", "my-station")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "my-station", settings.Station.ID)
	// Without an explicit token the station id doubles as the bearer token.
	assert.Equal(t, "my-station", settings.Station.Token)

	assert.Equal(t, "https://app.birdweather.com/graphql", settings.API.URL)
	assert.Equal(t, 120*time.Second, settings.API.Timeout)
	assert.Equal(t, 3, settings.API.MaxRetries)
	assert.Equal(t, 100, settings.Sync.DetectionPageSize)
	assert.Equal(t, 7*24*time.Hour, settings.Sync.ProbabilityTTL)
	assert.Equal(t, "data", settings.DataDir)
}

func TestLoad_ExplicitToken(t *testing.T) {
	viper.Reset()
	t.Setenv("BIRDWEATHER_STATION_ID", "my-station")
	t.Setenv("BIRDWEATHER_TOKEN", "secret-token")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", settings.Station.Token)
}

func TestValidate_MissingStationID(t *testing.T) {
	s := &Settings{
		API:  APISettings{URL: "https://app.birdweather.com/graphql"},
		Sync: SyncSettings{DetectionPageSize: 100},
	}

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	assert.Contains(t, err.Error(), "BIRDWEATHER_STATION_ID")
}

func TestValidate_PageSizeBounds(t *testing.T) {
	base := Settings{
		Station: StationSettings{ID: "4882"},
		API:     APISettings{URL: "https://app.birdweather.com/graphql"},
	}

	for _, size := range []int{0, -1, 101} {
		s := base
		s.Sync.DetectionPageSize = size
		err := s.Validate()
		require.Error(t, err, "page size %d", size)
		assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
	}

	s := base
	s.Sync.DetectionPageSize = 100
	assert.NoError(t, s.Validate())
}

func TestValidate_MissingURL(t *testing.T) {
	s := &Settings{
		Station: StationSettings{ID: "4882"},
		Sync:    SyncSettings{DetectionPageSize: 100},
	}

	err := s.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}
