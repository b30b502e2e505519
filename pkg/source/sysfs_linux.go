//go:build linux

package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/procfs/sysfs"

	"github.com/charlie0129/battstat/pkg/battery"
)

// DefaultSysfsRoot is where sysfs is normally mounted.
const DefaultSysfsRoot = "/sys"

var sysfsStatusCodes = map[string]int{
	"unknown":      battery.StatusCodeUnknown,
	"charging":     battery.StatusCodeCharging,
	"discharging":  battery.StatusCodeDischarging,
	"not charging": battery.StatusCodeNotCharging,
	"full":         battery.StatusCodeFull,
}

var sysfsHealthCodes = map[string]int{
	"unknown":             battery.HealthCodeUnknown,
	"good":                battery.HealthCodeGood,
	"overheat":            battery.HealthCodeOverheat,
	"hot":                 battery.HealthCodeOverheat,
	"dead":                battery.HealthCodeDead,
	"over voltage":        battery.HealthCodeOverVoltage,
	"unspecified failure": battery.HealthCodeUnspecifiedFailure,
	"cold":                battery.HealthCodeCold,
}

// Sysfs reads /sys/class/power_supply, the same attributes the platform
// battery service reads.
type Sysfs struct {
	fs   sysfs.FS
	name string
}

func NewSysfs(root, name string) (*Sysfs, error) {
	if root == "" {
		root = DefaultSysfsRoot
	}
	fs, err := sysfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open sysfs at %s: %w", root, err)
	}

	s := &Sysfs{fs: fs, name: name}
	// Fail early when there is no battery to read.
	if _, _, err := s.supplies(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sysfs) Name() string { return KindSysfs }

func (s *Sysfs) Read(_ context.Context) (battery.Extras, error) {
	bat, class, err := s.supplies()
	if err != nil {
		return nil, err
	}

	extras := battery.Extras{
		battery.ExtraScale:   100,
		battery.ExtraPlugged: pluggedCode(class),
	}

	if bat.Capacity != nil {
		extras[battery.ExtraLevel] = int(*bat.Capacity)
	}
	if bat.VoltageNow != nil {
		extras[battery.ExtraVoltage] = int(*bat.VoltageNow / 1000) // µV
	}
	if bat.Temp != nil {
		extras[battery.ExtraTemperature] = int(*bat.Temp) // tenths of °C
	}
	if bat.Technology != "" {
		extras[battery.ExtraTechnology] = bat.Technology
	}
	if bat.Present != nil {
		extras[battery.ExtraPresent] = *bat.Present == 1
	}
	if bat.ChargeNow != nil {
		extras[battery.ExtraChargeCounter] = int(*bat.ChargeNow) // µAh
	}
	if bat.Status != "" {
		if code, ok := sysfsStatusCodes[strings.ToLower(bat.Status)]; ok {
			extras[battery.ExtraStatus] = code
		} else {
			extras[battery.ExtraStatus] = battery.StatusCodeUnknown
		}
	}
	if bat.Health != "" {
		if code, ok := sysfsHealthCodes[strings.ToLower(bat.Health)]; ok {
			extras[battery.ExtraHealth] = code
		} else {
			extras[battery.ExtraHealth] = battery.HealthCodeUnknown
		}
	}

	return extras, nil
}

// supplies returns the selected battery and the whole class.
func (s *Sysfs) supplies() (sysfs.PowerSupply, sysfs.PowerSupplyClass, error) {
	class, err := s.fs.PowerSupplyClass()
	if err != nil {
		return sysfs.PowerSupply{}, nil, fmt.Errorf("failed to read power supplies: %w", err)
	}

	if s.name != "" {
		ps, ok := class[s.name]
		if !ok {
			return sysfs.PowerSupply{}, nil, fmt.Errorf("power supply %s not found", s.name)
		}
		return ps, class, nil
	}

	names := make([]string, 0, len(class))
	for name := range class {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.EqualFold(class[name].Type, "Battery") {
			return class[name], class, nil
		}
	}

	return sysfs.PowerSupply{}, nil, fmt.Errorf("no battery found among %d power supplies", len(class))
}

// pluggedCode ORs together the kinds of every online external supply.
func pluggedCode(class sysfs.PowerSupplyClass) int {
	code := battery.PluggedCodeNone
	for _, ps := range class {
		if ps.Online == nil || *ps.Online == 0 {
			continue
		}
		typ := strings.ToLower(ps.Type)
		switch {
		case typ == "mains":
			code |= battery.PluggedCodeAC
		case strings.HasPrefix(typ, "usb"):
			code |= battery.PluggedCodeUSB
		case typ == "wireless":
			code |= battery.PluggedCodeWireless
		}
	}
	return code
}
