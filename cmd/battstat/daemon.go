package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/daemon"
	"github.com/charlie0129/battstat/pkg/version"
)

var (
	// alwaysAllowNonRootAccess indicates whether to always allow non-root users to access the battstat daemon.
	alwaysAllowNonRootAccess = false
)

// NewDaemonCommand .
func NewDaemonCommand() *cobra.Command {
	var flags configFlags

	cmd := &cobra.Command{
		Use:     "daemon",
		Short:   "Run battstat daemon in the foreground",
		GroupID: gAdvanced,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logrus.WithFields(logrus.Fields{
				"version": version.Version,
				"commit":  version.GitCommit,
			}).Info("battstat daemon starting")
			return daemon.Run(configPath, unixSocketPath, alwaysAllowNonRootAccess, func(c config.Config) error {
				return flags.apply(cmd, c)
			})
		},
	}

	f := cmd.Flags()

	f.BoolVar(&alwaysAllowNonRootAccess, "always-allow-non-root-access", false,
		"Always allow non-root users to access the daemon.")
	flags.register(cmd, true)

	return cmd
}
