package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/client"
)

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Show the current battery status",
		Long: `Show the last battery status received by the daemon.

The daemon must be subscribed to battery events (see 'battstat register').
With --json, the rendered payload is printed exactly as the daemon displays it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := newAPIClient()

			if asJSON {
				text, err := apiClient.GetStatus()
				if err != nil {
					return statusError(err)
				}
				cmd.Println(text)
				return nil
			}

			snap, err := apiClient.GetSnapshot()
			if err != nil {
				return statusError(err)
			}
			printSnapshot(cmd, snap)

			state, err := apiClient.GetSubscription()
			if err != nil {
				return err
			}
			cmd.Println()
			cmd.Printf("Subscribed to battery events: %s\n", bool2Text(state == "subscribed"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the rendered battery payload")

	return cmd
}

func statusError(err error) error {
	if errors.Is(err, client.ErrNotFound) {
		return fmt.Errorf("no battery info yet, run 'battstat register' and try again: %w", err)
	}
	return err
}

func printSnapshot(cmd *cobra.Command, snap *client.SnapshotResponse) {
	cmd.Println(bold("Battery status:"))
	cmd.Printf("  Level: %s\n", bold("%d%%", snap.Level))
	cmd.Printf("  Charging: %s\n", bool2Text(snap.IsCharging))

	state := snap.Status
	switch snap.Status {
	case "CHARGING":
		state = color.GreenString("charging")
	case "DISCHARGING":
		state = color.RedString("discharging")
	case "FULL":
		state = "full"
	case "NOT_CHARGING":
		state = "not charging"
	}
	cmd.Printf("  State: %s\n", bold("%s", state))
	cmd.Printf("  Power source: %s\n", bold("%s", snap.Source))
	cmd.Printf("  Voltage: %s\n", bold("%.2f V", float64(snap.VoltageMillivolts)/1000))

	health := snap.Health
	if health == "GOOD" {
		health = color.GreenString(health)
	} else {
		health = color.YellowString(health)
	}
	cmd.Printf("  Health: %s\n", bold("%s", health))
	if snap.Technology != "" {
		cmd.Printf("  Technology: %s\n", bold("%s", snap.Technology))
	}
	cmd.Printf("  Temperature: %s\n", bold("%.1f °C", snap.TemperatureCelsius()))
}

func bool2Text(b bool) string {
	if b {
		return color.New(color.Bold, color.FgGreen).Sprint("✔")
	}
	return color.New(color.Bold, color.FgRed).Sprint("✘")
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
