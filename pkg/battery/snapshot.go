package battery

import (
	"sort"
	"time"
)

// Defaults used when a key is absent from the payload.
const (
	DefaultLevel       = 0
	DefaultVoltage     = 0
	DefaultCode        = -1
	DefaultTemperature = -1
)

// Snapshot is one decoded battery reading. It is built in one go by Decode
// and never modified afterwards; every event produces a new one.
type Snapshot struct {
	Level                    int          `json:"level"`
	IsCharging               bool         `json:"isCharging"`
	Status                   ChargeStatus `json:"status"`
	Source                   ChargeSource `json:"source"`
	VoltageMillivolts        int          `json:"voltageMillivolts"`
	Health                   Health       `json:"health"`
	Technology               string       `json:"technology"`
	TemperatureTenthsCelsius int          `json:"temperatureTenthsCelsius"`
	ReceivedAt               time.Time    `json:"receivedAt"`

	missing map[string]struct{}
}

// Decode builds a Snapshot from a payload. Absent or wrong-typed values fall
// back to their defaults and are remembered, so callers can tell a real zero
// from a missing one with Has.
func Decode(extras Extras) Snapshot {
	s := Snapshot{
		ReceivedAt: time.Now(),
		missing:    make(map[string]struct{}),
	}

	intOr := func(key string, def int) int {
		v, ok := extras.Int(key)
		if !ok {
			s.missing[key] = struct{}{}
			return def
		}
		return v
	}

	statusCode := intOr(ExtraStatus, DefaultCode)
	s.Status = ChargeStatusFromCode(statusCode)
	s.IsCharging = s.Status.Charging()
	s.Source = ChargeSourceFromCode(intOr(ExtraPlugged, DefaultCode))
	s.Level = intOr(ExtraLevel, DefaultLevel)
	s.VoltageMillivolts = intOr(ExtraVoltage, DefaultVoltage)
	s.Health = HealthFromCode(intOr(ExtraHealth, DefaultCode))
	s.TemperatureTenthsCelsius = intOr(ExtraTemperature, DefaultTemperature)

	if tech, ok := extras.String(ExtraTechnology); ok {
		s.Technology = tech
	} else {
		s.missing[ExtraTechnology] = struct{}{}
	}

	return s
}

// Has reports whether key was present and well-typed in the decoded payload.
func (s Snapshot) Has(key string) bool {
	_, absent := s.missing[key]
	return !absent
}

// Missing lists the decoded keys that fell back to defaults, sorted.
func (s Snapshot) Missing() []string {
	keys := make([]string, 0, len(s.missing))
	for k := range s.missing {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TemperatureCelsius converts the tenths reading.
func (s Snapshot) TemperatureCelsius() float64 {
	return float64(s.TemperatureTenthsCelsius) / 10
}
