package store

import (
	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/parquetstore"
)

// LoadDetections reads the detections cache without touching the network.
// A missing cache file yields an empty table.
func (s *Store) LoadDetections() ([]birdweather.Detection, error) {
	if !parquetstore.Exists(s.DetectionsPath()) {
		return []birdweather.Detection{}, nil
	}
	return parquetstore.Load[birdweather.Detection](s.DetectionsPath())
}

// LoadEnvironment reads the environment cache without touching the network.
func (s *Store) LoadEnvironment() ([]birdweather.EnvironmentReading, error) {
	if !parquetstore.Exists(s.EnvironmentPath()) {
		return []birdweather.EnvironmentReading{}, nil
	}
	return parquetstore.Load[birdweather.EnvironmentReading](s.EnvironmentPath())
}

// LoadSpeciesMeta reads the species metadata cache without touching the
// network.
func (s *Store) LoadSpeciesMeta() ([]birdweather.SpeciesMeta, error) {
	if !parquetstore.Exists(s.SpeciesMetaPath()) {
		return []birdweather.SpeciesMeta{}, nil
	}
	return parquetstore.Load[birdweather.SpeciesMeta](s.SpeciesMetaPath())
}

// LoadSpeciesProbabilities reads the species probabilities cache without
// touching the network.
func (s *Store) LoadSpeciesProbabilities() ([]birdweather.SpeciesProbability, error) {
	if !parquetstore.Exists(s.ProbabilitiesPath()) {
		return []birdweather.SpeciesProbability{}, nil
	}
	return parquetstore.Load[birdweather.SpeciesProbability](s.ProbabilitiesPath())
}
