package source

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/events"
)

// DefaultInterval is how often the battery is read when no interval is
// configured.
const DefaultInterval = 10 * time.Second

// Broadcaster is what the poller hands battery-changed events to.
type Broadcaster interface {
	Broadcast(events.Event)
}

// Poller reads a Source periodically and broadcasts a battery-changed event
// whenever the payload differs from the previous reading.
type Poller struct {
	src      Source
	out      Broadcaster
	interval time.Duration

	last battery.Extras
}

func NewPoller(src Source, out Broadcaster, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{src: src, out: out, interval: interval}
}

// Poll reads the source once. It reports whether an event was broadcast.
func (p *Poller) Poll(ctx context.Context) (bool, error) {
	extras, err := p.src.Read(ctx)
	if err != nil {
		return false, err
	}

	if p.last != nil && p.last.Equal(extras) {
		return false, nil
	}
	p.last = extras.Clone()

	p.out.Broadcast(events.Event{
		Action: events.ActionBatteryChanged,
		Extras: extras,
		Time:   time.Now(),
	})
	return true, nil
}

// Run polls immediately and then on every tick until ctx is done. Read
// errors are logged and the next tick tries again.
func (p *Poller) Run(ctx context.Context) {
	logrus.WithFields(logrus.Fields{
		"source":   p.src.Name(),
		"interval": p.interval.String(),
	}).Debug("battery poller starts")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		changed, err := p.Poll(ctx)
		if err != nil {
			logrus.WithError(err).WithField("source", p.src.Name()).Error("failed to read battery")
		} else if changed {
			logrus.Trace("battery changed")
		}

		select {
		case <-ctx.Done():
			logrus.Debug("battery poller stopped")
			return
		case <-ticker.C:
		}
	}
}
