package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/charlie0129/battstat/pkg/battery"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	got    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 64)}
}

func (r *recorder) OnReceive(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func (r *recorder) wait(t *testing.T, n int) []Event {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.got:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func batteryEvent(level int) Event {
	return Event{Action: ActionBatteryChanged, Extras: battery.Extras{battery.ExtraLevel: level}}
}

func TestHubDeliversInOrder(t *testing.T) {
	h := startHub(t)
	r := newRecorder()
	h.Register(r, NewFilter(ActionBatteryChanged))

	for i := 1; i <= 5; i++ {
		h.Broadcast(batteryEvent(i * 10))
	}

	got := r.wait(t, 5)
	for i, e := range got {
		if lvl, _ := e.Extras.Int(battery.ExtraLevel); lvl != (i+1)*10 {
			t.Errorf("event %d level = %d, want %d", i, lvl, (i+1)*10)
		}
		if e.Time.IsZero() {
			t.Errorf("event %d has no time", i)
		}
	}
}

func TestHubStickyOnRegister(t *testing.T) {
	h := startHub(t)
	h.Broadcast(batteryEvent(55))

	r := newRecorder()
	h.Register(r, NewFilter(ActionBatteryChanged))

	got := r.wait(t, 1)
	if lvl, _ := got[0].Extras.Int(battery.ExtraLevel); lvl != 55 {
		t.Errorf("sticky level = %d, want 55", lvl)
	}

	if e, ok := h.Sticky(ActionBatteryChanged); !ok || e.Action != ActionBatteryChanged {
		t.Errorf("Sticky() = %v, %v", e, ok)
	}
}

func TestHubFilter(t *testing.T) {
	h := startHub(t)
	battRecv := newRecorder()
	otherRecv := newRecorder()
	h.Register(battRecv, NewFilter(ActionBatteryChanged))
	h.Register(otherRecv, NewFilter("power.connected"))

	h.Broadcast(batteryEvent(10))
	h.Broadcast(Event{Action: "power.connected"})

	battRecv.wait(t, 1)
	otherRecv.wait(t, 1)
	if battRecv.count() != 1 || otherRecv.count() != 1 {
		t.Errorf("counts = %d/%d, want 1/1", battRecv.count(), otherRecv.count())
	}
}

func TestHubUnregister(t *testing.T) {
	tests := []struct {
		name      string
		registers int
		wantErr   error
	}{
		{name: "not registered", registers: 0, wantErr: ErrReceiverNotRegistered},
		{name: "registered once", registers: 1, wantErr: nil},
		{name: "registered twice", registers: 2, wantErr: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHub()
			r := newRecorder()
			for i := 0; i < tt.registers; i++ {
				h.Register(r, NewFilter(ActionBatteryChanged))
			}
			err := h.Unregister(r)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Unregister() error = %v, want %v", err, tt.wantErr)
			}
			if h.Registered(r) {
				t.Errorf("receiver still registered after Unregister")
			}
		})
	}
}

func TestHubNoDeliveryAfterUnregister(t *testing.T) {
	h := startHub(t)
	r := newRecorder()
	marker := newRecorder()
	h.Register(r, NewFilter(ActionBatteryChanged))
	h.Register(marker, NewFilter(ActionBatteryChanged))

	if err := h.Unregister(r); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	h.Broadcast(batteryEvent(20))
	marker.wait(t, 1)

	if r.count() != 0 {
		t.Errorf("unregistered receiver got %d events", r.count())
	}
}

func TestNewReceiverFunc(t *testing.T) {
	h := startHub(t)
	done := make(chan Event, 1)
	r := NewReceiverFunc(func(e Event) { done <- e })
	h.Register(r, NewFilter(ActionBatteryChanged))
	h.Broadcast(batteryEvent(1))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("function receiver not called")
	}
	if err := h.Unregister(r); err != nil {
		t.Errorf("Unregister() error = %v", err)
	}
}

func TestHubRegisterTwiceQueuesStickyOnce(t *testing.T) {
	h := NewHub()
	h.Broadcast(batteryEvent(40))
	<-h.queue

	r := newRecorder()
	h.Register(r, NewFilter(ActionBatteryChanged))
	h.Register(r, NewFilter(ActionBatteryChanged))

	if got := len(h.queue); got != 1 {
		t.Fatalf("queued deliveries = %d, want 1", got)
	}
	d := <-h.queue
	if d.target != r || d.event.Extras[battery.ExtraLevel] != 40 {
		t.Errorf("delivery = %+v", d)
	}
}

func TestHubWarnsOnDroppedSticky(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	h := NewHub()
	for i := 0; i < cap(h.queue); i++ {
		h.Broadcast(batteryEvent(i))
	}
	hook.Reset()

	h.Register(NewReceiverFunc(func(Event) {}), NewFilter(ActionBatteryChanged))

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("last log entry = %+v, want a warning", entry)
	}
	if entry.Data["receiver"] != "anonymous" || entry.Data["action"] != ActionBatteryChanged {
		t.Errorf("warning fields = %v", entry.Data)
	}
}
