package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/daemon"
)

func NewHistoryCommand() *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: gBasic,
		Short:   "Show recent battery readings",
		Long: `Show the battery readings the daemon recorded recently, with a summary.

Readings are recorded whether or not the battery screen is subscribed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := newAPIClient().GetHistory()
			if err != nil {
				return err
			}
			printHistory(cmd, sum, last)
			return nil
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 10, "number of readings to print, 0 for all")

	return cmd
}

func printHistory(cmd *cobra.Command, sum *daemon.HistorySummary, last int) {
	cmd.Println(bold("Battery history:"))
	cmd.Printf("  Readings: %s\n", bold("%d", sum.Count))
	if sum.Count == 0 {
		return
	}

	cmd.Printf("  Level: %s\n", bold("min %s / mean %s / max %s",
		optFloat(sum.LevelMin, "%.0f%%"), optFloat(sum.LevelMean, "%.1f%%"), optFloat(sum.LevelMax, "%.0f%%")))
	cmd.Printf("  Temperature: %s\n", bold("mean %s / max %s",
		optFloat(sum.TemperatureMeanCelsius, "%.1f °C"), optFloat(sum.TemperatureMaxCelsius, "%.1f °C")))

	records := sum.Records
	if last > 0 && len(records) > last {
		records = records[len(records)-last:]
	}

	cmd.Println()
	for _, r := range records {
		temp := "-"
		if r.TemperatureTenthsCelsius != nil {
			temp = fmt.Sprintf("%.1f °C", float64(*r.TemperatureTenthsCelsius)/10)
		}
		cmd.Printf("  %s  %3d%%  %-12s  %.2f V  %s\n",
			r.Time.Local().Format(time.DateTime), r.Level, r.Status, float64(r.VoltageMillivolts)/1000, temp)
	}
}

func optFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
