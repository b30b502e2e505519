package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/events"
)

// metrics exports every battery-changed event as Prometheus series.
type metrics struct {
	level       prometheus.Gauge
	voltage     prometheus.Gauge
	temperature prometheus.Gauge
	charging    prometheus.Gauge
	status      *prometheus.GaugeVec
	source      *prometheus.GaugeVec
	health      *prometheus.GaugeVec
	received    prometheus.Counter

	mqttPublished prometheus.Counter
	mqttFailed    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		level: f.NewGauge(prometheus.GaugeOpts{
			Name: "battstat_battery_level_percent",
			Help: "Battery charge level in percent.",
		}),
		voltage: f.NewGauge(prometheus.GaugeOpts{
			Name: "battstat_battery_voltage_volts",
			Help: "Battery voltage in volts.",
		}),
		temperature: f.NewGauge(prometheus.GaugeOpts{
			Name: "battstat_battery_temperature_celsius",
			Help: "Battery temperature in degrees Celsius.",
		}),
		charging: f.NewGauge(prometheus.GaugeOpts{
			Name: "battstat_battery_charging",
			Help: "1 when the battery is charging or full, 0 otherwise.",
		}),
		status: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "battstat_battery_status",
			Help: "Current charge status; the series with value 1 is active.",
		}, []string{"status"}),
		source: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "battstat_battery_charge_source",
			Help: "Current charge source; the series with value 1 is active.",
		}, []string{"source"}),
		health: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "battstat_battery_health",
			Help: "Current battery health; the series with value 1 is active.",
		}, []string{"health"}),
		received: f.NewCounter(prometheus.CounterOpts{
			Name: "battstat_battery_events_total",
			Help: "Total battery-changed events received.",
		}),
		mqttPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "battstat_mqtt_publish_success_total",
			Help: "Total battery messages successfully published to MQTT.",
		}),
		mqttFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "battstat_mqtt_publish_failure_total",
			Help: "Total battery publish attempts that failed or timed out.",
		}),
	}
}

func (m *metrics) Name() string { return "metrics" }

func (m *metrics) OnReceive(e events.Event) {
	snap := battery.Decode(e.Extras)

	m.received.Inc()
	if snap.Has(battery.ExtraLevel) {
		m.level.Set(float64(snap.Level))
	}
	if snap.Has(battery.ExtraVoltage) {
		m.voltage.Set(float64(snap.VoltageMillivolts) / 1000)
	}
	if snap.Has(battery.ExtraTemperature) {
		m.temperature.Set(snap.TemperatureCelsius())
	}
	if snap.IsCharging {
		m.charging.Set(1)
	} else {
		m.charging.Set(0)
	}

	m.status.Reset()
	m.status.WithLabelValues(snap.Status.String()).Set(1)
	m.source.Reset()
	m.source.WithLabelValues(snap.Source.String()).Set(1)
	m.health.Reset()
	m.health.WithLabelValues(snap.Health.String()).Set(1)
}
