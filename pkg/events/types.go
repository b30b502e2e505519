package events

import (
	"time"

	"github.com/charlie0129/battstat/pkg/battery"
)

// Action names.
const (
	ActionBatteryChanged = "battery.changed"
)

// Event is a broadcast carrying an action name and its payload.
type Event struct {
	Action string         `json:"action"`
	Extras battery.Extras `json:"extras"`
	Time   time.Time      `json:"time"`
}

// Receiver handles delivered events. OnReceive is never called
// concurrently for the same hub. Receivers are used as map keys, so
// implementations must be comparable (pointer types are).
type Receiver interface {
	OnReceive(Event)
}

type funcReceiver struct {
	fn func(Event)
}

func (r *funcReceiver) OnReceive(e Event) { r.fn(e) }

// NewReceiverFunc adapts a plain function to Receiver. Every call returns a
// distinct receiver, so the result must be kept to unregister it later.
func NewReceiverFunc(fn func(Event)) Receiver {
	return &funcReceiver{fn: fn}
}

// Filter selects the actions a receiver is interested in.
type Filter struct {
	actions map[string]struct{}
}

// NewFilter returns a filter matching exactly the given actions.
func NewFilter(actions ...string) Filter {
	f := Filter{actions: make(map[string]struct{}, len(actions))}
	for _, a := range actions {
		f.actions[a] = struct{}{}
	}
	return f
}

// Match reports whether the action passes the filter.
func (f Filter) Match(action string) bool {
	_, ok := f.actions[action]
	return ok
}
