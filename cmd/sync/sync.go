// Package sync implements the incremental cache synchronization command.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/logging"
	"github.com/tphakala/birdweather-sync/internal/store"
)

// Command creates the sync command, which pulls new detections,
// environment readings, species metadata, and species probabilities into
// the local cache.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync station data into the local cache",
		Long: `Incrementally fetches new detections and environment readings from the
BirdWeather API, refreshes species metadata for any species missing from
the cache, and re-fetches the seasonal species probabilities when the
cached copy is older than its TTL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), settings)
		},
	}
}

func runSync(ctx context.Context, settings *conf.Settings) error {
	client, err := birdweather.NewClient(birdweather.ConfigFromSettings(settings))
	if err != nil {
		return err
	}
	defer client.Close()

	stationID, err := client.ResolveStationID(ctx, settings.Station.ID)
	if err != nil {
		return err
	}

	// The overview's earliest detection timestamp bounds the very first
	// full fetch; without it an empty station would page until MaxPages.
	var earliestAt *time.Time
	overview, err := client.FetchStationOverview(ctx, stationID)
	if err != nil {
		return err
	}
	if overview.EarliestDetectionAt != "" {
		ts, err := time.Parse(time.RFC3339, overview.EarliestDetectionAt)
		if err == nil {
			earliestAt = &ts
		}
	}

	st := store.New(settings.DataDir, client, settings.Sync)
	defer st.Close()

	result, err := st.SyncAll(ctx, stationID, earliestAt)
	if err != nil {
		return err
	}

	logging.Info("Sync complete",
		"station_id", stationID,
		"detections", result.Detections,
		"environment", result.Environment,
		"species_meta", result.SpeciesMeta,
		"probabilities", result.Probabilities)

	fmt.Printf("Station %s (%s) synced to %s\n", overview.Name, stationID, settings.DataDir)
	fmt.Printf("  detections:    %d rows\n", result.Detections)
	fmt.Printf("  environment:   %d rows\n", result.Environment)
	fmt.Printf("  species meta:  %d rows\n", result.SpeciesMeta)
	fmt.Printf("  probabilities: %d rows\n", result.Probabilities)
	return nil
}
