package config

import "time"

type Config interface {
	PollInterval() time.Duration
	Source() string
	SysfsRoot() string
	BatteryName() string
	BatteryIndex() int
	AutoRegister() bool
	AllowNonRootAccess() bool
	HistorySize() int
	MQTTBroker() string
	MQTTTopic() string
	MQTTClientID() string
	SummarySchedule() string

	SetPollInterval(time.Duration)
	SetSource(string)
	SetAutoRegister(bool)
	SetAllowNonRootAccess(bool)
	SetHistorySize(int)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
