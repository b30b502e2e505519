package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/battstat/pkg/config"
	daemonutils "github.com/charlie0129/battstat/pkg/utils/daemon"
)

var gInstallation = "Installation:"

func init() {
	commandGroups = append(commandGroups, gInstallation)
}

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	var (
		allowNonRootAccess bool
		autoRegister       bool
	)

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "Install battstat daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Install battstat daemon as a systemd service (system-wide).

This makes battstat run in the background and automatically start on boot. You must run this command as root.

By default, only root user is allowed to access the battstat daemon. Use --allow-non-root-access to let other users run battstat commands without sudo.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the battstat daemon.")
			} else {
				logrus.Info("only root user is allowed to access the battstat daemon.")
			}
			if cmd.Flags().Changed("auto-register") {
				conf.SetAutoRegister(autoRegister)
			}

			exePath, err := os.Executable()
			if err != nil {
				return fmt.Errorf("failed to get the path to the current executable: %w", err)
			}

			err = daemonutils.NewUnit().Install(exePath, configPath)
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			logrus.Infof("installation succeeded")

			cmd.Printf("systemd will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run `battstat install' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access battstat daemon.")
	cmd.Flags().BoolVar(&autoRegister, "auto-register", false, "Subscribe to battery events as soon as the daemon starts.")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "uninstall",
		Short:   "Uninstall battstat daemon (system-wide)",
		GroupID: gInstallation,
		Long: `Uninstall battstat daemon from systemd (system-wide).

You must run this command as root.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := daemonutils.NewUnit().Uninstall()
			if err != nil {
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			logrus.Info("successfully uninstalled")

			cmd.Printf("Your config is kept in %s, in case you want to use `battstat' again.\n", configPath)

			return nil
		},
	}
}
