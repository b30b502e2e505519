package source

import (
	"context"
	"fmt"
	"math"

	distatus "github.com/distatus/battery"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/battery"
)

// deadCapacityRatio is the full/design capacity ratio under which a battery
// is reported as dead.
const deadCapacityRatio = 0.4

// Distatus reads the battery through github.com/distatus/battery, which
// works on macOS, Windows, the BSDs and Linux.
type Distatus struct {
	index int
	get   func(int) (*distatus.Battery, error)
}

func NewDistatus(index int) *Distatus {
	return &Distatus{index: index, get: distatus.Get}
}

func (d *Distatus) Name() string { return KindDistatus }

func (d *Distatus) Read(_ context.Context) (battery.Extras, error) {
	bat, err := d.get(d.index)
	if bat == nil {
		if err == nil {
			err = fmt.Errorf("no battery at index %d", d.index)
		}
		return nil, fmt.Errorf("failed to read battery %d: %w", d.index, err)
	}
	if err != nil {
		// Partial readings still carry the fields that worked.
		logrus.WithError(err).Debug("partial battery reading")
	}

	return distatusExtras(bat), nil
}

func distatusExtras(bat *distatus.Battery) battery.Extras {
	extras := battery.Extras{
		battery.ExtraScale:   100,
		battery.ExtraPresent: true,
	}

	if bat.Full > 0 {
		level := int(math.Round(bat.Current / bat.Full * 100))
		extras[battery.ExtraLevel] = clamp(level, 0, 100)
	}

	if bat.Voltage > 0 {
		extras[battery.ExtraVoltage] = int(math.Round(bat.Voltage * 1000))
	}

	// A discharging battery without any current flowing is plugged in but
	// held, not discharging.
	idle := bat.State == distatus.Discharging && bat.ChargeRate == 0

	switch {
	case bat.State == distatus.Charging:
		extras[battery.ExtraStatus] = battery.StatusCodeCharging
		extras[battery.ExtraPlugged] = battery.PluggedCodeAC
	case bat.State == distatus.Full:
		extras[battery.ExtraStatus] = battery.StatusCodeFull
		extras[battery.ExtraPlugged] = battery.PluggedCodeAC
	case idle:
		extras[battery.ExtraStatus] = battery.StatusCodeNotCharging
		extras[battery.ExtraPlugged] = battery.PluggedCodeAC
	case bat.State == distatus.Discharging, bat.State == distatus.Empty:
		extras[battery.ExtraStatus] = battery.StatusCodeDischarging
		extras[battery.ExtraPlugged] = battery.PluggedCodeNone
	default:
		extras[battery.ExtraStatus] = battery.StatusCodeUnknown
	}

	switch {
	case bat.Design <= 0 || bat.Full <= 0:
		extras[battery.ExtraHealth] = battery.HealthCodeUnknown
	case bat.Full/bat.Design < deadCapacityRatio:
		extras[battery.ExtraHealth] = battery.HealthCodeDead
	default:
		extras[battery.ExtraHealth] = battery.HealthCodeGood
	}

	return extras
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
