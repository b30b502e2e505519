package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/battstat/pkg/client"
	"github.com/charlie0129/battstat/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/battstat.sock"
	configPath     = "/etc/battstat.json"
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: battstat daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'battstat daemon', or use 'battstat watch' to read the battery directly.")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with the '--always-allow-non-root-access' flag")
	case errors.Is(err, client.ErrNotSubscribed):
		fmt.Fprintln(os.Stderr, "\nError: the daemon is not subscribed to battery events. Run 'battstat register' first.")
	}
}

func main() {
	// battstat does not need many CPUs.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battstat",
		Short: "battstat shows live battery status",
		Long: `battstat shows live battery status: charge level, voltage, health, charging source and temperature.

A daemon reads the battery periodically and broadcasts battery-changed events.
Subscribe to them with 'battstat register', or watch them locally with 'battstat watch'.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "battstat daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewRegisterCommand(),
		NewUnregisterCommand(),
		NewSubscriptionCommand(),
		NewHistoryCommand(),
		NewWatchCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		GroupID: gAdvanced,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("client: %s %s\n", version.Version, version.GitCommit)
			daemonVersion, err := newAPIClient().GetVersion()
			if err != nil {
				logrus.Debugf("failed to get daemon version: %v", err)
				return
			}
			cmd.Printf("daemon: %s\n", daemonVersion)
			if daemonVersion != version.Version {
				logrus.WithFields(logrus.Fields{
					"clientVersion": version.Version,
					"daemonVersion": daemonVersion,
				}).Warn("Version mismatch between client and daemon.")
			}
		},
	}
}

func newAPIClient() *client.Client {
	return client.NewClient(unixSocketPath)
}
