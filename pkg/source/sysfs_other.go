//go:build !linux

package source

import (
	"context"
	"errors"

	"github.com/charlie0129/battstat/pkg/battery"
)

const DefaultSysfsRoot = "/sys"

var errSysfsUnsupported = errors.New("sysfs battery source is only available on linux")

// Sysfs is unavailable outside linux.
type Sysfs struct{}

func NewSysfs(_, _ string) (*Sysfs, error) {
	return nil, errSysfsUnsupported
}

func (s *Sysfs) Name() string { return KindSysfs }

func (s *Sysfs) Read(_ context.Context) (battery.Extras, error) {
	return nil, errSysfsUnsupported
}
