// Package report implements aggregate reports over the cached data.
package report

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/conf"
	"github.com/tphakala/birdweather-sync/internal/store"
)

// Command creates the report command with its subcommands. Reports run
// against the local cache by default; --remote asks the API for the same
// aggregation instead.
func Command(settings *conf.Settings) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate reports over cached detections",
	}
	reportCmd.AddCommand(
		topSpeciesCommand(settings),
		dailyCommand(settings),
		hourlyCommand(settings),
	)
	return reportCmd
}

func topSpeciesCommand(settings *conf.Settings) *cobra.Command {
	var days, limit int
	var remote bool

	cmd := &cobra.Command{
		Use:   "top-species",
		Short: "Rank species by detection count",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopSpecies(cmd.Context(), settings, days, limit, remote)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Restrict to the last N days (0 = all)")
	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum species to list")
	cmd.Flags().BoolVar(&remote, "remote", false, "Query the API instead of the local cache")
	return cmd
}

func dailyCommand(settings *conf.Settings) *cobra.Command {
	var days int
	var remote bool

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Per-day, per-species detection counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaily(cmd.Context(), settings, days, remote)
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "Restrict to the last N days (0 = all)")
	cmd.Flags().BoolVar(&remote, "remote", false, "Query the API instead of the local cache")
	return cmd
}

func hourlyCommand(settings *conf.Settings) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "hourly",
		Short: "Detection counts binned by hour of day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHourly(cmd.Context(), settings, remote)
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Query the API instead of the local cache")
	return cmd
}

func runTopSpecies(ctx context.Context, settings *conf.Settings, days, limit int, remote bool) error {
	var rows []birdweather.TopSpeciesRow

	if remote {
		client, stationID, err := connect(ctx, settings)
		if err != nil {
			return err
		}
		defer client.Close()
		var period *birdweather.Period
		if days > 0 {
			period = birdweather.LastDays(days)
		}
		rows, err = client.FetchTopSpecies(ctx, stationID, period, limit)
		if err != nil {
			return err
		}
	} else {
		st := store.New(settings.DataDir, nil, settings.Sync)
		defer st.Close()
		detections, err := st.LoadDetections()
		if err != nil {
			return err
		}
		meta, err := st.LoadSpeciesMeta()
		if err != nil {
			return err
		}
		rows = st.ComputeTopSpecies(detections, meta, days, limit)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tCOMMON NAME\tSCIENTIFIC NAME\tAVG PROB")
	for i := range rows {
		r := &rows[i]
		prob := "-"
		if r.AverageProbability != nil {
			prob = fmt.Sprintf("%.3f", *r.AverageProbability)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Count, r.CommonName, r.ScientificName, prob)
	}
	return w.Flush()
}

func runDaily(ctx context.Context, settings *conf.Settings, days int, remote bool) error {
	var rows []birdweather.DailyCountRow

	if remote {
		client, stationID, err := connect(ctx, settings)
		if err != nil {
			return err
		}
		defer client.Close()
		var period *birdweather.Period
		if days > 0 {
			period = birdweather.LastDays(days)
		}
		rows, err = client.FetchDailyDetectionCounts(ctx, stationID, period)
		if err != nil {
			return err
		}
	} else {
		st := store.New(settings.DataDir, nil, settings.Sync)
		defer st.Close()
		detections, err := st.LoadDetections()
		if err != nil {
			return err
		}
		rows = st.ComputeDailyDetectionCounts(detections, days)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tDAY TOTAL\tCOMMON NAME\tCOUNT")
	for i := range rows {
		r := &rows[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\n", r.Date, r.DailyTotal, r.CommonName, r.Count)
	}
	return w.Flush()
}

func runHourly(ctx context.Context, settings *conf.Settings, remote bool) error {
	var rows []birdweather.TimeOfDayRow

	if remote {
		client, stationID, err := connect(ctx, settings)
		if err != nil {
			return err
		}
		defer client.Close()
		rows, err = client.FetchTimeOfDayCounts(ctx, stationID, nil)
		if err != nil {
			return err
		}
	} else {
		st := store.New(settings.DataDir, nil, settings.Sync)
		defer st.Close()
		detections, err := st.LoadDetections()
		if err != nil {
			return err
		}
		rows = st.ComputeTimeOfDayCounts(detections)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOUR\tCOMMON NAME\tCOUNT\tSPECIES TOTAL")
	for i := range rows {
		r := &rows[i]
		fmt.Fprintf(w, "%02d\t%s\t%d\t%d\n", r.Hour, r.CommonName, r.Count, r.TotalCount)
	}
	return w.Flush()
}

// connect builds a client and resolves the configured station.
func connect(ctx context.Context, settings *conf.Settings) (*birdweather.Client, string, error) {
	client, err := birdweather.NewClient(birdweather.ConfigFromSettings(settings))
	if err != nil {
		return nil, "", err
	}
	stationID, err := client.ResolveStationID(ctx, settings.Station.ID)
	if err != nil {
		client.Close()
		return nil, "", err
	}
	return client, stationID, nil
}
