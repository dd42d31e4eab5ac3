package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/birdweather-sync/cmd/report"
	"github.com/tphakala/birdweather-sync/cmd/status"
	"github.com/tphakala/birdweather-sync/cmd/sync"
	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "birdweather-sync",
		Short: "BirdWeather station sync and local aggregation CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		sync.Command(settings),
		report.Command(settings),
		status.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags are parsed after conf.Load, so --debug takes effect here.
		if settings.Debug {
			logging.Init(slog.LevelDebug)
			logging.Debug("Debug output enabled")
		}
		// Fallback chain: explicit token, else the station identifier.
		if settings.Station.Token == "" {
			settings.Station.Token = settings.Station.ID
		}
		// Configuration errors surface before any network call.
		return settings.Validate()
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.DataDir, "data-dir", settings.DataDir, "Local cache directory")
	rootCmd.PersistentFlags().StringVar(&settings.Station.ID, "station", settings.Station.ID, "Station token/slug or numeric id")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
