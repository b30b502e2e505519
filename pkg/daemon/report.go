package daemon

import (
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// summaryReporter logs the history summary on a cron schedule and, when an
// MQTT client is present, publishes it to <topic>/summary.
type summaryReporter struct {
	history *History
	client  publishClient
	topic   string

	cron *cron.Cron
}

func newSummaryReporter(history *History, schedule string, client publishClient, topic string) (*summaryReporter, error) {
	r := &summaryReporter{
		history: history,
		client:  client,
		topic:   topic + "/summary",
		cron:    cron.New(cron.WithParser(cronParser)),
	}
	if _, err := r.cron.AddFunc(schedule, r.report); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *summaryReporter) Start() {
	r.cron.Start()
	logrus.WithField("next", r.NextRun().Format(time.DateTime)).Info("history summary report scheduled")
}

// Stop waits for a running report to finish.
func (r *summaryReporter) Stop() {
	<-r.cron.Stop().Done()
}

func (r *summaryReporter) NextRun() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now())
}

func (r *summaryReporter) report() {
	sum := r.history.Summary()

	fields := logrus.Fields{"count": sum.Count}
	if sum.LevelMean != nil {
		fields["levelMin"] = *sum.LevelMin
		fields["levelMean"] = *sum.LevelMean
		fields["levelMax"] = *sum.LevelMax
	}
	if sum.TemperatureMeanCelsius != nil {
		fields["temperatureMean"] = *sum.TemperatureMeanCelsius
	}
	logrus.WithFields(fields).Info("battery history summary")

	if r.client == nil {
		return
	}

	// Records are already on the main topic one by one.
	sum.Records = nil
	b, err := json.Marshal(sum)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal history summary")
		return
	}
	token := r.client.Publish(r.topic, 1, false, b)
	if ok := token.WaitTimeout(mqttPublishTimeout); !ok {
		logrus.WithField("topic", r.topic).Warn("MQTT publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		logrus.WithError(err).WithField("topic", r.topic).Error("MQTT publish failed")
	}
}
