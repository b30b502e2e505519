package daemon

import (
	"os/exec"
	"strings"
)

const (
	DefaultUnitDir = "/etc/systemd/system"
	UnitName       = "battstat.service"
)

const unitTemplate = `[Unit]
Description=battstat battery status daemon
After=multi-user.target

[Service]
Type=simple
ExecStart=/path/to/battstat daemon --config /path/to/config
Restart=on-failure
RestartSec=5

[Install]
WantedBy=multi-user.target
`

// Unit installs battstat as a systemd service.
type Unit struct {
	// Dir is where the unit file is written.
	Dir string
	// Run executes systemctl. It defaults to running the real binary.
	Run func(name string, args ...string) error
}

func NewUnit() *Unit {
	return &Unit{
		Dir: DefaultUnitDir,
		Run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

func renderUnit(exePath, configPath string) string {
	return strings.NewReplacer(
		"/path/to/battstat", exePath,
		"/path/to/config", configPath,
	).Replace(unitTemplate)
}
