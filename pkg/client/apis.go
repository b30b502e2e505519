package client

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/battstat/pkg/battery"
	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/daemon"
)

// GetStatus returns the rendered battery text shown by the daemon.
func (c *Client) GetStatus() (string, error) {
	ret, err := c.Get("/status")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get battery status")
	}
	return ret, nil
}

// SnapshotResponse mirrors battery.Snapshot with labels as strings.
type SnapshotResponse struct {
	Level                    int    `json:"level"`
	IsCharging               bool   `json:"isCharging"`
	Status                   string `json:"status"`
	Source                   string `json:"source"`
	VoltageMillivolts        int    `json:"voltageMillivolts"`
	Health                   string `json:"health"`
	Technology               string `json:"technology"`
	TemperatureTenthsCelsius int    `json:"temperatureTenthsCelsius"`
}

// TemperatureCelsius converts the tenths reading.
func (s *SnapshotResponse) TemperatureCelsius() float64 {
	return float64(s.TemperatureTenthsCelsius) / 10
}

// Charging reports whether the status label is one of the charging ones.
func (s *SnapshotResponse) Charging() bool {
	return s.Status == battery.StatusCharging.String() || s.Status == battery.StatusFull.String()
}

func (c *Client) GetSnapshot() (*SnapshotResponse, error) {
	ret, err := c.Get("/snapshot")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get battery snapshot")
	}

	var snap SnapshotResponse
	if err := json.Unmarshal([]byte(ret), &snap); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal battery snapshot")
	}
	return &snap, nil
}

func (c *Client) GetSubscription() (string, error) {
	ret, err := c.Get("/subscription")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get subscription state")
	}

	var state string
	if err := json.Unmarshal([]byte(ret), &state); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal subscription state")
	}
	return state, nil
}

func (c *Client) Subscribe() (string, error) {
	return c.Put("/subscription", "")
}

func (c *Client) Unsubscribe() (string, error) {
	return c.Delete("/subscription")
}

func (c *Client) GetHistory() (*daemon.HistorySummary, error) {
	ret, err := c.Get("/history")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get history")
	}

	var sum daemon.HistorySummary
	if err := json.Unmarshal([]byte(ret), &sum); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal history")
	}
	return &sum, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}

	return &conf, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}

	var v string
	if err := json.Unmarshal([]byte(ret), &v); err != nil {
		return "", pkgerrors.Wrapf(err, "failed to unmarshal version")
	}
	return v, nil
}
