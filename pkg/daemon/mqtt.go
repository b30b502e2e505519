package daemon

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/events"
)

const mqttPublishTimeout = 3 * time.Second

// publishClient is the part of mqtt.Client the publisher uses.
type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// mqttPublisher publishes the rendered text of every battery-changed event
// as a retained message.
type mqttPublisher struct {
	client  publishClient
	topic   string
	metrics *metrics
}

func newMQTTClient(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(_ mqtt.Client) {
			logrus.WithField("broker", broker).Info("connected to MQTT broker")
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logrus.WithError(err).Warn("MQTT connection lost, reconnecting")
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if ok := token.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("MQTT connect to %s timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("MQTT connect to %s failed: %w", broker, err)
	}
	return client, nil
}

func (p *mqttPublisher) Name() string { return "mqtt" }

func (p *mqttPublisher) OnReceive(e events.Event) {
	text, err := battery.Render(e.Extras, battery.Decode(e.Extras))
	if err != nil {
		logrus.WithError(err).Error("failed to render battery info for MQTT")
		return
	}

	token := p.client.Publish(p.topic, 1, true, []byte(text))
	// Do not hold up other receivers while waiting for the ack.
	go p.await(token)
}

func (p *mqttPublisher) await(token mqtt.Token) {
	if ok := token.WaitTimeout(mqttPublishTimeout); !ok {
		logrus.WithField("topic", p.topic).Warn("MQTT publish timed out")
		p.metrics.mqttFailed.Inc()
		return
	}
	if err := token.Error(); err != nil {
		logrus.WithError(err).WithField("topic", p.topic).Error("MQTT publish failed")
		p.metrics.mqttFailed.Inc()
		return
	}
	logrus.WithField("topic", p.topic).Debug("published battery info")
	p.metrics.mqttPublished.Inc()
}
