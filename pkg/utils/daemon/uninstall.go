package daemon

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func (u *Unit) Uninstall() error {
	logrus.Infof("stopping battstat")

	err := u.Run("systemctl", "disable", "--now", UnitName)
	if err != nil {
		return fmt.Errorf("failed to disable %s: %w. Are you root?", UnitName, err)
	}

	logrus.Infof("removing systemd unit")

	// if the file doesn't exist, we don't need to remove it
	_, err = os.Stat(u.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", u.Path(), err)
	}

	err = os.Remove(u.Path())
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w. Are you root?", u.Path(), err)
	}

	return u.Run("systemctl", "daemon-reload")
}
