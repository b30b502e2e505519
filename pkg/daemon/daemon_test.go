package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/events"
)

func chargingExtras(level int) battery.Extras {
	return battery.Extras{
		battery.ExtraLevel:       level,
		battery.ExtraStatus:      battery.StatusCodeCharging,
		battery.ExtraPlugged:     battery.PluggedCodeAC,
		battery.ExtraHealth:      battery.HealthCodeGood,
		battery.ExtraVoltage:     4200,
		battery.ExtraTechnology:  "Li-ion",
		battery.ExtraTemperature: 250,
	}
}

func testDaemon(t *testing.T) (*daemon, http.Handler) {
	t.Helper()
	d := newDaemon(config.NewFileFromConfig(nil, ""))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go d.hub.Run(ctx)
	d.registerReceivers()
	return d, d.setupRoutes()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStatusBeforeSubscribe(t *testing.T) {
	d, h := testDaemon(t)
	d.hub.Broadcast(events.Event{Action: events.ActionBatteryChanged, Extras: chargingExtras(80)})

	if w := do(t, h, http.MethodGet, "/status"); w.Code != http.StatusNotFound {
		t.Errorf("GET /status = %d, want 404", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/snapshot"); w.Code != http.StatusNotFound {
		t.Errorf("GET /snapshot = %d, want 404", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/subscription"); !strings.Contains(w.Body.String(), "unsubscribed") {
		t.Errorf("GET /subscription = %s", w.Body.String())
	}
}

func TestSubscribeAndStatus(t *testing.T) {
	d, h := testDaemon(t)

	if w := do(t, h, http.MethodPut, "/subscription"); w.Code != http.StatusCreated {
		t.Fatalf("PUT /subscription = %d", w.Code)
	}
	d.hub.Broadcast(events.Event{Action: events.ActionBatteryChanged, Extras: chargingExtras(80)})
	eventually(t, func() bool { return d.display.Updates() > 0 })

	w := do(t, h, http.MethodGet, "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /status = %d", w.Code)
	}
	for _, want := range []string{`"level": 80`, `"isCharging": true`, `"status": "CHARGING"`, `"plugged": "AC"`, `"health": "GOOD"`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("GET /status missing %s:\n%s", want, w.Body.String())
		}
	}

	w = do(t, h, http.MethodGet, "/snapshot")
	var snap map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("GET /snapshot body: %v", err)
	}
	if snap["status"] != "CHARGING" || snap["level"] != float64(80) {
		t.Errorf("GET /snapshot = %v", snap)
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	_, h := testDaemon(t)

	do(t, h, http.MethodPut, "/subscription")
	do(t, h, http.MethodPut, "/subscription")

	if w := do(t, h, http.MethodDelete, "/subscription"); w.Code != http.StatusOK {
		t.Errorf("first DELETE /subscription = %d, want 200", w.Code)
	}
	if w := do(t, h, http.MethodDelete, "/subscription"); w.Code != http.StatusConflict {
		t.Errorf("second DELETE /subscription = %d, want 409", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/subscription"); !strings.Contains(w.Body.String(), "unsubscribed") {
		t.Errorf("GET /subscription = %s", w.Body.String())
	}
}

func TestHistoryAndMetrics(t *testing.T) {
	d, h := testDaemon(t)

	for _, lvl := range []int{70, 80, 90} {
		d.hub.Broadcast(events.Event{Action: events.ActionBatteryChanged, Extras: chargingExtras(lvl)})
	}
	eventually(t, func() bool { return len(d.history.Records()) == 3 })

	w := do(t, h, http.MethodGet, "/history")
	var sum HistorySummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("GET /history body: %v", err)
	}
	if sum.Count != 3 || *sum.LevelMin != 70 || *sum.LevelMax != 90 || *sum.LevelMean != 80 {
		t.Errorf("history summary = %+v", sum)
	}
	if *sum.TemperatureMeanCelsius != 25 {
		t.Errorf("temperature mean = %v, want 25", *sum.TemperatureMeanCelsius)
	}

	eventually(t, func() bool {
		return strings.Contains(do(t, h, http.MethodGet, "/metrics").Body.String(), "battstat_battery_events_total 3")
	})
	body := do(t, h, http.MethodGet, "/metrics").Body.String()
	for _, want := range []string{
		"battstat_battery_level_percent 90",
		"battstat_battery_charging 1",
		`battstat_battery_status{status="CHARGING"} 1`,
		"battstat_battery_events_total 3",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("GET /metrics missing %q", want)
		}
	}
}

func TestConfigAndVersion(t *testing.T) {
	_, h := testDaemon(t)

	w := do(t, h, http.MethodGet, "/config")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"pollInterval": "10s"`) {
		t.Errorf("GET /config = %d %s", w.Code, w.Body.String())
	}
	if w := do(t, h, http.MethodGet, "/version"); w.Code != http.StatusOK {
		t.Errorf("GET /version = %d", w.Code)
	}
}

func TestHistoryRing(t *testing.T) {
	hist := NewHistory(2)
	for i := 1; i <= 3; i++ {
		hist.OnReceive(events.Event{Extras: battery.Extras{battery.ExtraLevel: i}, Time: time.Now()})
	}
	records := hist.Records()
	if len(records) != 2 || records[0].Level != 2 || records[1].Level != 3 {
		t.Errorf("records = %+v", records)
	}

	sum := NewHistory(5).Summary()
	if sum.Count != 0 || sum.LevelMean != nil || sum.TemperatureMeanCelsius != nil {
		t.Errorf("empty summary = %+v", sum)
	}
}

type fakeToken struct {
	ok  bool
	err error
}

func (f *fakeToken) Wait() bool                       { return f.ok }
func (f *fakeToken) WaitTimeout(_ time.Duration) bool { return f.ok }
func (f *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (f *fakeToken) Error() error { return f.err }

type fakePublishClient struct {
	mu       sync.Mutex
	token    mqtt.Token
	topic    string
	retained bool
	payload  []byte
}

func (f *fakePublishClient) Publish(topic string, _ byte, retained bool, payload interface{}) mqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topic = topic
	f.retained = retained
	f.payload = payload.([]byte)
	return f.token
}

func TestMQTTPublisher(t *testing.T) {
	tests := []struct {
		name  string
		token *fakeToken
	}{
		{name: "acked", token: &fakeToken{ok: true}},
		{name: "timeout", token: &fakeToken{ok: false}},
		{name: "error", token: &fakeToken{ok: true, err: errors.New("not authorized")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakePublishClient{token: tt.token}
			p := &mqttPublisher{client: client, topic: "home/battery", metrics: newMetrics(nil)}

			p.OnReceive(events.Event{Action: events.ActionBatteryChanged, Extras: chargingExtras(80)})

			client.mu.Lock()
			defer client.mu.Unlock()
			if client.topic != "home/battery" || !client.retained {
				t.Errorf("topic = %s, retained = %v", client.topic, client.retained)
			}
			if !strings.Contains(string(client.payload), `"level": 80`) {
				t.Errorf("payload = %s", client.payload)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	conf := config.NewFileFromConfig(nil, "")
	calls := 0
	overrides := []Override{
		func(c config.Config) error {
			calls++
			c.SetPollInterval(time.Second)
			return nil
		},
		func(config.Config) error {
			calls++
			return errors.New("bad flag")
		},
		func(config.Config) error {
			calls++
			return nil
		},
	}

	if err := applyOverrides(conf, overrides); err == nil {
		t.Fatal("applyOverrides() should stop at the failing override")
	}
	if calls != 2 {
		t.Errorf("overrides called %d times, want 2", calls)
	}
	if conf.PollInterval() != time.Second {
		t.Errorf("PollInterval() = %v, want 1s", conf.PollInterval())
	}
}
