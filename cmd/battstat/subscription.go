package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewRegisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "register",
		GroupID: gBasic,
		Short:   "Subscribe the daemon to battery events",
		Long: `Subscribe the daemon's battery screen to battery-changed events.

The current battery state is shown right after subscribing. Registering again is harmless.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := newAPIClient().Subscribe()
			if err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}
			logrus.Info("registered for battery events")
			return nil
		},
	}
}

func NewUnregisterCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "unregister",
		GroupID: gBasic,
		Short:   "Unsubscribe the daemon from battery events",
		Long: `Unsubscribe the daemon's battery screen from battery-changed events.

The last battery status stays visible. Unregistering when not registered is an error.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ret, err := newAPIClient().Unsubscribe()
			if err != nil {
				return fmt.Errorf("failed to unregister: %w", err)
			}
			if ret != "" {
				logrus.Debugf("daemon responded: %s", ret)
			}
			logrus.Info("unregistered from battery events")
			return nil
		},
	}
}

func NewSubscriptionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "subscription",
		GroupID: gAdvanced,
		Short:   "Print whether the daemon is subscribed to battery events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := newAPIClient().GetSubscription()
			if err != nil {
				return err
			}
			cmd.Println(state)
			return nil
		},
	}
}
