// Package store reads and writes the local columnar caches, merges freshly
// fetched pages with cached data, and computes aggregate tables from the
// cached raw data that replicate the schema of the equivalent remote
// endpoints.
//
// The store assumes a single-process, single-writer usage pattern and
// performs no locking; concurrent invocations against the same cache files
// are unsafe.
package store

import (
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/logging"
)

// Package-level logger specific to the store service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "store.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "store", serviceLevelVar)
	if err != nil {
		log.Printf("Failed to initialize store file logger at %s: %v. Service logging disabled.", logFilePath, err)
		logger = logging.NewDiscardLogger("store")
		closeLogger = func() error { return nil }
	}
}

// Cache file names, one columnar file per record kind.
const (
	detectionsFile  = "detections.parquet"
	environmentFile = "environment.parquet"
	speciesMetaFile = "species_meta.parquet"
	probabilityFile = "species_probabilities.parquet"
)

// topSpeciesBulkLimit is how many species the bulk metadata fetch covers.
const topSpeciesBulkLimit = 1000

// Store is the sync and aggregation store for one local data directory.
type Store struct {
	dataDir string
	client  birdweather.Interface
	sync    conf.SyncSettings

	// now is the clock used for sync windows, cache TTLs, and period
	// filters. Tests substitute a fixed clock.
	now func() time.Time
}

// New creates a Store over the given data directory. The directory is
// created on first sync. Zero values in sync fall back to defaults.
func New(dataDir string, client birdweather.Interface, sync conf.SyncSettings) *Store {
	if sync.DetectionPageSize <= 0 {
		sync.DetectionPageSize = 100
	}
	if sync.DetectionMaxPages <= 0 {
		sync.DetectionMaxPages = 1000
	}
	if sync.EnvironmentPageSize <= 0 {
		sync.EnvironmentPageSize = 1000
	}
	if sync.EnvironmentMaxPages <= 0 {
		sync.EnvironmentMaxPages = 400
	}
	if sync.ProbabilityTTL <= 0 {
		sync.ProbabilityTTL = 7 * 24 * time.Hour
	}
	return &Store{
		dataDir: dataDir,
		client:  client,
		sync:    sync,
		now:     time.Now,
	}
}

// Close releases the store's log resources.
func (s *Store) Close() {
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing store logger: %v", err)
		}
	}
}

// DetectionsPath returns the detections cache file path.
func (s *Store) DetectionsPath() string {
	return filepath.Join(s.dataDir, detectionsFile)
}

// EnvironmentPath returns the environment readings cache file path.
func (s *Store) EnvironmentPath() string {
	return filepath.Join(s.dataDir, environmentFile)
}

// SpeciesMetaPath returns the species metadata cache file path.
func (s *Store) SpeciesMetaPath() string {
	return filepath.Join(s.dataDir, speciesMetaFile)
}

// ProbabilitiesPath returns the species probabilities cache file path.
func (s *Store) ProbabilitiesPath() string {
	return filepath.Join(s.dataDir, probabilityFile)
}
