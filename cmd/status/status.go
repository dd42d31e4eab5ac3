// Package status implements the station status command.
package status

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/birdweather-sync/internal/birdweather"
	"github.com/tphakala/birdweather-sync/internal/conf"
)

// Command creates the status command, which prints a live station
// overview: identity, lifetime counts, current weather, and the latest
// environment sensor reading.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show live station overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), settings)
		},
	}
}

func runStatus(ctx context.Context, settings *conf.Settings) error {
	client, err := birdweather.NewClient(birdweather.ConfigFromSettings(settings))
	if err != nil {
		return err
	}
	defer client.Close()

	stationID, err := client.ResolveStationID(ctx, settings.Station.ID)
	if err != nil {
		return err
	}

	overview, err := client.FetchStationOverview(ctx, stationID)
	if err != nil {
		return err
	}

	fmt.Printf("Station:    %s (id %s)\n", overview.Name, stationID)
	if overview.Location != "" {
		fmt.Printf("Location:   %s\n", overview.Location)
	}
	if overview.Coords != nil {
		fmt.Printf("Coords:     %.4f, %.4f\n", overview.Coords.Lat, overview.Coords.Lon)
	}
	if overview.Timezone != "" {
		fmt.Printf("Timezone:   %s\n", overview.Timezone)
	}
	fmt.Printf("Detections: %d across %d species\n", overview.Counts.Detections, overview.Counts.Species)
	if overview.EarliestDetectionAt != "" {
		fmt.Printf("First seen: %s\n", overview.EarliestDetectionAt)
	}
	if overview.LatestDetectionAt != "" {
		fmt.Printf("Last seen:  %s\n", overview.LatestDetectionAt)
	}

	if w := overview.Weather; w != nil {
		fmt.Println("Weather:")
		if w.Description != nil {
			fmt.Printf("  %s\n", *w.Description)
		}
		printValue("temp", w.Temp, "°C")
		printValue("feels like", w.FeelsLike, "°C")
		printValue("humidity", w.Humidity, "%")
		printValue("pressure", w.Pressure, " hPa")
		printValue("wind", w.WindSpeed, " m/s")
	}

	if e := overview.Environment; e != nil {
		fmt.Println("Sensors:")
		printValue("temperature", e.Temperature, "°C")
		printValue("humidity", e.Humidity, "%")
		printValue("pressure", e.BarometricPressure, " hPa")
		printValue("sound level", e.SoundPressureLevel, " dB")
		printValue("AQI", e.AQI, "")
		printValue("eCO2", e.ECO2, " ppm")
		printValue("VOC", e.VOC, " ppb")
	}

	return nil
}

func printValue(label string, v *float64, unit string) {
	if v == nil {
		return
	}
	fmt.Printf("  %-12s %.1f%s\n", label+":", *v, unit)
}
