package presenter

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/events"
)

// State is the subscription state of a Presenter.
type State int

const (
	Unsubscribed State = iota
	Subscribed
)

func (s State) String() string {
	if s == Subscribed {
		return "subscribed"
	}
	return "unsubscribed"
}

// Display shows rendered battery text. SetText runs with the presenter's
// lock held and must not call back into the presenter.
type Display interface {
	SetText(string)
}

// Hub is the broadcast registry the presenter subscribes to.
type Hub interface {
	Register(events.Receiver, events.Filter)
	Unregister(events.Receiver) error
}

// Presenter subscribes to battery-changed events and writes a rendered
// snapshot of each one to its Display.
type Presenter struct {
	hub          Hub
	display      Display
	filter       events.Filter
	autoRegister bool

	mu    sync.Mutex
	state State
	last  *battery.Snapshot
}

// Option customizes a Presenter.
type Option func(*Presenter)

// WithAutoRegister makes Start subscribe.
func WithAutoRegister(enabled bool) Option {
	return func(p *Presenter) { p.autoRegister = enabled }
}

func New(hub Hub, display Display, opts ...Option) *Presenter {
	p := &Presenter{
		hub:     hub,
		display: display,
		filter:  events.NewFilter(events.ActionBatteryChanged),
		state:   Unsubscribed,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name identifies the presenter in hub logs.
func (p *Presenter) Name() string { return "presenter" }

// Subscribe starts receiving battery-changed events. The current battery
// state, if known, arrives right after.
func (p *Presenter) Subscribe() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == Subscribed {
		logrus.Warn("presenter is already subscribed")
	}
	p.hub.Register(p, p.filter)
	p.state = Subscribed
	logrus.Info("subscribed to battery events")
}

// Unsubscribe stops receiving events. It returns the hub's error when the
// presenter is not subscribed.
func (p *Presenter) Unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.unsubscribeLocked()
}

func (p *Presenter) unsubscribeLocked() error {
	if err := p.hub.Unregister(p); err != nil {
		return fmt.Errorf("failed to unsubscribe from battery events: %w", err)
	}
	p.state = Unsubscribed
	logrus.Info("unsubscribed from battery events")
	return nil
}

// Start is called when the screen comes to the foreground. It only
// subscribes when auto-registration is enabled.
func (p *Presenter) Start() {
	if p.autoRegister {
		p.Subscribe()
	}
}

// Stop is called when the screen goes to the background. A subscribed
// presenter is unsubscribed before Stop returns.
func (p *Presenter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Subscribed {
		return
	}
	if err := p.unsubscribeLocked(); err != nil {
		logrus.WithError(err).Error("failed to unsubscribe on stop")
		// The hub no longer knows us either way.
		p.state = Unsubscribed
	}
}

// State returns the subscription state.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Last returns the most recently decoded snapshot.
func (p *Presenter) Last() (battery.Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.last == nil {
		return battery.Snapshot{}, false
	}
	return *p.last, true
}

// OnReceive decodes and renders a battery-changed event. If rendering fails
// the display keeps its previous text.
//
// The display is written under p.mu and only while subscribed, so once
// Unsubscribe or Stop has returned no late delivery reaches the display.
func (p *Presenter) OnReceive(e events.Event) {
	if e.Action != events.ActionBatteryChanged {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != Subscribed {
		logrus.Debug("battery event arrived after unsubscribe, dropped")
		return
	}

	snap := decode(e.Extras)
	p.last = &snap

	text, err := battery.Render(e.Extras, snap)
	if err != nil {
		logrus.WithError(err).Error("failed to render battery info")
		return
	}
	p.display.SetText(text)
}

// OnBatteryEvent decodes the payload and remembers the snapshot.
func (p *Presenter) OnBatteryEvent(extras battery.Extras) battery.Snapshot {
	snap := decode(extras)

	p.mu.Lock()
	p.last = &snap
	p.mu.Unlock()

	return snap
}

func decode(extras battery.Extras) battery.Snapshot {
	snap := battery.Decode(extras)

	logrus.WithFields(logrus.Fields{
		"level":       snap.Level,
		"isCharging":  snap.IsCharging,
		"status":      snap.Status.String(),
		"source":      snap.Source.String(),
		"voltage":     snap.VoltageMillivolts,
		"health":      snap.Health.String(),
		"technology":  snap.Technology,
		"temperature": snap.TemperatureCelsius(),
	}).Debug("battery changed")
	if missing := snap.Missing(); len(missing) > 0 {
		logrus.WithField("keys", missing).Debug("battery payload has missing fields")
	}

	return snap
}
