package source

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/battery"
)

// Source kinds accepted by New.
const (
	KindAuto     = "auto"
	KindSysfs    = "sysfs"
	KindDistatus = "distatus"
)

// Source produces the payload of a battery-changed event.
type Source interface {
	Name() string
	Read(ctx context.Context) (battery.Extras, error)
}

// Options configures New.
type Options struct {
	// SysfsRoot is the sysfs mount point, usually /sys.
	SysfsRoot string
	// Battery selects the sysfs supply by name, e.g. BAT0. Empty picks the
	// first supply of type Battery.
	Battery string
	// Index selects the battery for the distatus reader.
	Index int
}

// New returns the source of the given kind. KindAuto uses sysfs when it is
// available on this system and falls back to distatus.
func New(kind string, opts Options) (Source, error) {
	switch kind {
	case KindSysfs:
		s, err := NewSysfs(opts.SysfsRoot, opts.Battery)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindDistatus:
		return NewDistatus(opts.Index), nil
	case KindAuto, "":
		s, err := NewSysfs(opts.SysfsRoot, opts.Battery)
		if err == nil {
			return s, nil
		}
		logrus.WithError(err).Debug("sysfs battery source unavailable, using distatus")
		return NewDistatus(opts.Index), nil
	default:
		return nil, fmt.Errorf("unknown battery source %q", kind)
	}
}
