package battery

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Render converts the payload into indented JSON text for display. The
// status, health and plugged keys are replaced with the decoded labels of
// snap and isCharging is added.
//
// Each payload value is converted on its own: a value that cannot be
// represented as JSON is logged and left out, the rest is still rendered.
// Keys come out sorted, so rendering the same input twice gives the same
// text.
func Render(extras Extras, snap Snapshot) (string, error) {
	fields := make(map[string]json.RawMessage, len(extras)+1)

	for key, value := range extras {
		b, err := json.Marshal(value)
		if err != nil {
			logrus.WithError(err).WithField("key", key).Error("failed to convert battery extra to JSON, skipping")
			continue
		}
		fields[key] = b
	}

	labels := map[string]string{
		ExtraHealth:  snap.Health.String(),
		ExtraStatus:  snap.Status.String(),
		ExtraPlugged: snap.Source.String(),
	}
	for key, label := range labels {
		b, err := json.Marshal(label)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s label: %w", key, err)
		}
		fields[key] = b
	}
	if snap.IsCharging {
		fields[keyIsCharging] = json.RawMessage("true")
	} else {
		fields[keyIsCharging] = json.RawMessage("false")
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to assemble battery text: %w", err)
	}

	return string(out), nil
}
