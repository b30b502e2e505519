package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrReceiverNotRegistered is returned when unregistering a receiver the
// hub does not know about.
var ErrReceiverNotRegistered = errors.New("receiver not registered")

const defaultQueueSize = 16

type delivery struct {
	event Event
	// target is nil for a broadcast to every matching receiver.
	target Receiver
}

// Hub delivers broadcast events to registered receivers. The last event of
// each action is kept (sticky) and handed to receivers as soon as they
// register. A single goroutine started by Run performs all deliveries in
// order.
type Hub struct {
	mu        sync.RWMutex
	receivers map[Receiver]Filter
	sticky    map[string]Event
	queue     chan delivery
}

func NewHub() *Hub {
	return &Hub{
		receivers: make(map[Receiver]Filter),
		sticky:    make(map[string]Event),
		queue:     make(chan delivery, defaultQueueSize),
	}
}

// Register adds r with the given filter. Registering r again only replaces
// its filter. A newly registered r gets the matching sticky events queued
// right away.
func (h *Hub) Register(r Receiver, filter Filter) {
	h.mu.Lock()
	_, existed := h.receivers[r]
	h.receivers[r] = filter
	var pending []Event
	if !existed {
		for action, e := range h.sticky {
			if filter.Match(action) {
				pending = append(pending, e)
			}
		}
	}
	h.mu.Unlock()

	if existed {
		logrus.WithField("receiver", receiverName(r)).Debug("receiver registered twice, filter replaced")
	}

	for _, e := range pending {
		h.enqueue(delivery{event: e, target: r})
	}
}

// Unregister removes r. It fails with ErrReceiverNotRegistered if r is not
// registered.
func (h *Hub) Unregister(r Receiver) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.receivers[r]; !ok {
		return ErrReceiverNotRegistered
	}
	delete(h.receivers, r)
	return nil
}

// Registered reports whether r is currently registered.
func (h *Hub) Registered(r Receiver) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.receivers[r]
	return ok
}

// Broadcast records e as the sticky event of its action and queues it for
// delivery.
func (h *Hub) Broadcast(e Event) {
	if h == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	h.mu.Lock()
	h.sticky[e.Action] = e
	h.mu.Unlock()

	h.enqueue(delivery{event: e})
}

// Sticky returns the last event broadcast for action.
func (h *Hub) Sticky(action string) (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	e, ok := h.sticky[action]
	return e, ok
}

func (h *Hub) enqueue(d delivery) {
	// Non-blocking send; drop if the dispatcher is behind
	select {
	case h.queue <- d:
	default:
		entry := logrus.WithField("action", d.event.Action)
		if d.target != nil {
			entry.WithField("receiver", receiverName(d.target)).Warn("event queue full, dropping sticky event for new receiver")
			return
		}
		entry.Warn("event queue full, dropping event")
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-h.queue:
			h.dispatch(d)
		}
	}
}

func (h *Hub) dispatch(d delivery) {
	var targets []Receiver

	h.mu.RLock()
	if d.target != nil {
		if f, ok := h.receivers[d.target]; ok && f.Match(d.event.Action) {
			targets = append(targets, d.target)
		}
	} else {
		for r, f := range h.receivers {
			if f.Match(d.event.Action) {
				targets = append(targets, r)
			}
		}
	}
	h.mu.RUnlock()

	// Receivers may register or unregister from OnReceive, so the lock is
	// not held while delivering.
	for _, r := range targets {
		r.OnReceive(d.event)
	}
}

func receiverName(r Receiver) string {
	if n, ok := r.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "anonymous"
}
