package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

func (u *Unit) Path() string {
	return filepath.Join(u.Dir, UnitName)
}

// Install writes the unit file for exePath and starts the service.
func (u *Unit) Install(exePath, configPath string) error {
	exePath, err := filepath.Abs(exePath)
	if err != nil {
		return fmt.Errorf("failed to get the absolute path to the executable: %w", err)
	}

	err = os.Chmod(exePath, 0755)
	if err != nil {
		return fmt.Errorf("failed to chmod the executable to 0755: %w", err)
	}

	logrus.Infof("executable path: %s", exePath)

	err = os.MkdirAll(u.Dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", u.Dir, err)
	}

	// warn if the file already exists
	_, err = os.Stat(u.Path())
	if err == nil {
		logrus.Warnf("%s already exists, overwriting", u.Path())
	}

	logrus.Infof("writing systemd unit to %s", u.Path())
	err = os.WriteFile(u.Path(), []byte(renderUnit(exePath, configPath)), 0644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", u.Path(), err)
	}

	logrus.Infof("starting battstat")

	err = u.Run("systemctl", "daemon-reload")
	if err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	err = u.Run("systemctl", "enable", "--now", UnitName)
	if err != nil {
		return fmt.Errorf("failed to enable %s: %w", UnitName, err)
	}

	return nil
}
