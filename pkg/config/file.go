package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/utils/ptr"
)

var (
	defaultFileConfig = &RawFileConfig{
		PollInterval: ptr.To("10s"),
		Source:       ptr.To("auto"),
		SysfsRoot:    ptr.To("/sys"),
		BatteryName:  ptr.To(""),
		BatteryIndex: ptr.To(0),
		// Subscribing on start was never enabled for the screen. Keep the
		// toggle manual unless the user opts in.
		AutoRegister:       ptr.To(false),
		AllowNonRootAccess: ptr.To(false),
		HistorySize:        ptr.To(360),
		MQTTBroker:         ptr.To(""),
		MQTTTopic:          ptr.To("battstat/battery"),
		MQTTClientID:       ptr.To("battstat"),
		SummarySchedule:    ptr.To(""),
	}
)

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = &RawFileConfig{}
	}

	f := &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}

	return f
}

type RawFileConfig struct {
	PollInterval       *string `json:"pollInterval,omitempty"`
	Source             *string `json:"source,omitempty"`
	SysfsRoot          *string `json:"sysfsRoot,omitempty"`
	BatteryName        *string `json:"batteryName,omitempty"`
	BatteryIndex       *int    `json:"batteryIndex,omitempty"`
	AutoRegister       *bool   `json:"autoRegister,omitempty"`
	AllowNonRootAccess *bool   `json:"allowNonRootAccess,omitempty"`
	HistorySize        *int    `json:"historySize,omitempty"`
	MQTTBroker         *string `json:"mqttBroker,omitempty"`
	MQTTTopic          *string `json:"mqttTopic,omitempty"`
	MQTTClientID       *string `json:"mqttClientID,omitempty"`
	SummarySchedule    *string `json:"summarySchedule,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	rawConfig := &RawFileConfig{
		PollInterval:       ptr.To(c.PollInterval().String()),
		Source:             ptr.To(c.Source()),
		SysfsRoot:          ptr.To(c.SysfsRoot()),
		BatteryName:        ptr.To(c.BatteryName()),
		BatteryIndex:       ptr.To(c.BatteryIndex()),
		AutoRegister:       ptr.To(c.AutoRegister()),
		AllowNonRootAccess: ptr.To(c.AllowNonRootAccess()),
		HistorySize:        ptr.To(c.HistorySize()),
		MQTTBroker:         ptr.To(c.MQTTBroker()),
		MQTTTopic:          ptr.To(c.MQTTTopic()),
		MQTTClientID:       ptr.To(c.MQTTClientID()),
		SummarySchedule:    ptr.To(c.SummarySchedule()),
	}

	return rawConfig, nil
}

// get reads a field of the raw config, falling back to its default.
func get[T any](f *File, field func(*RawFileConfig) *T) T {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if v := field(f.c); v != nil {
		return *v
	}
	return *field(defaultFileConfig)
}

func (f *File) PollInterval() time.Duration {
	raw := get(f, func(c *RawFileConfig) *string { return c.PollInterval })
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logrus.Warnf("invalid poll interval %q, using %s", raw, *defaultFileConfig.PollInterval)
		d, _ = time.ParseDuration(*defaultFileConfig.PollInterval)
	}
	return d
}

func (f *File) Source() string {
	return get(f, func(c *RawFileConfig) *string { return c.Source })
}

func (f *File) SysfsRoot() string {
	return get(f, func(c *RawFileConfig) *string { return c.SysfsRoot })
}

func (f *File) BatteryName() string {
	return get(f, func(c *RawFileConfig) *string { return c.BatteryName })
}

func (f *File) BatteryIndex() int {
	return get(f, func(c *RawFileConfig) *int { return c.BatteryIndex })
}

func (f *File) AutoRegister() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.AutoRegister })
}

func (f *File) AllowNonRootAccess() bool {
	return get(f, func(c *RawFileConfig) *bool { return c.AllowNonRootAccess })
}

func (f *File) HistorySize() int {
	return get(f, func(c *RawFileConfig) *int { return c.HistorySize })
}

func (f *File) MQTTBroker() string {
	return get(f, func(c *RawFileConfig) *string { return c.MQTTBroker })
}

func (f *File) MQTTTopic() string {
	return get(f, func(c *RawFileConfig) *string { return c.MQTTTopic })
}

func (f *File) MQTTClientID() string {
	return get(f, func(c *RawFileConfig) *string { return c.MQTTClientID })
}

// SummarySchedule is a cron expression for the history summary report.
// Empty disables the report.
func (f *File) SummarySchedule() string {
	return get(f, func(c *RawFileConfig) *string { return c.SummarySchedule })
}

func (f *File) SetPollInterval(d time.Duration) {
	if f.c == nil {
		panic("config is nil")
	}

	if d <= 0 {
		panic("poll interval must be positive")
	}

	s := d.String()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.PollInterval = &s
}

func (f *File) SetSource(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Source = &s
}

func (f *File) SetAutoRegister(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AutoRegister = &b
}

func (f *File) SetAllowNonRootAccess(b bool) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.AllowNonRootAccess = &b
}

func (f *File) SetHistorySize(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	if i < 1 {
		panic("history size must be at least 1")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.HistorySize = &i
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.c)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"pollInterval":       f.PollInterval().String(),
		"source":             f.Source(),
		"sysfsRoot":          f.SysfsRoot(),
		"batteryName":        f.BatteryName(),
		"batteryIndex":       f.BatteryIndex(),
		"autoRegister":       f.AutoRegister(),
		"allowNonRootAccess": f.AllowNonRootAccess(),
		"historySize":        f.HistorySize(),
		"mqttBroker":         f.MQTTBroker(),
		"mqttTopic":          f.MQTTTopic(),
		"summarySchedule":    f.SummarySchedule(),
	}
}
