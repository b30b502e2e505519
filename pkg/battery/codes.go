package battery

// ChargeStatus is the decoded value of the status extra.
type ChargeStatus int

const (
	// StatusUnrecognized is used for absent or unknown status codes.
	StatusUnrecognized ChargeStatus = iota
	StatusUnknown
	StatusCharging
	StatusDischarging
	StatusNotCharging
	StatusFull
)

// Raw status codes as carried in the payload.
const (
	StatusCodeUnknown     = 1
	StatusCodeCharging    = 2
	StatusCodeDischarging = 3
	StatusCodeNotCharging = 4
	StatusCodeFull        = 5
)

var statusByCode = map[int]ChargeStatus{
	StatusCodeUnknown:     StatusUnknown,
	StatusCodeCharging:    StatusCharging,
	StatusCodeDischarging: StatusDischarging,
	StatusCodeNotCharging: StatusNotCharging,
	StatusCodeFull:        StatusFull,
}

var statusNames = [...]string{
	StatusUnrecognized: Unrecognized,
	StatusUnknown:      "UNKNOWN",
	StatusCharging:     "CHARGING",
	StatusDischarging:  "DISCHARGING",
	StatusNotCharging:  "NOT_CHARGING",
	StatusFull:         "FULL",
}

// Unrecognized is the label of every code that has no mapping.
const Unrecognized = "UNRECOGNIZED"

// ChargeStatusFromCode maps a raw status code. It never fails.
func ChargeStatusFromCode(code int) ChargeStatus {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return StatusUnrecognized
}

func (s ChargeStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return Unrecognized
	}
	return statusNames[s]
}

// MarshalText renders the label, so snapshots encode readably.
func (s ChargeStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Charging reports whether the status means power is flowing into the
// battery, or it is already full while plugged in.
func (s ChargeStatus) Charging() bool {
	return s == StatusCharging || s == StatusFull
}

// ChargeSource is the decoded value of the plugged extra.
type ChargeSource int

const (
	SourceUnrecognized ChargeSource = iota
	SourceNone
	SourceAC
	SourceUSB
	SourceWireless
)

// Raw plugged codes. They form a bit set on the wire, but only single
// values are meaningful here.
const (
	PluggedCodeNone     = 0
	PluggedCodeAC       = 1
	PluggedCodeUSB      = 2
	PluggedCodeWireless = 4
)

var sourceByCode = map[int]ChargeSource{
	PluggedCodeNone:     SourceNone,
	PluggedCodeAC:       SourceAC,
	PluggedCodeUSB:      SourceUSB,
	PluggedCodeWireless: SourceWireless,
}

var sourceNames = [...]string{
	SourceUnrecognized: Unrecognized,
	SourceNone:         "NONE",
	SourceAC:           "AC",
	SourceUSB:          "USB",
	SourceWireless:     "WIRELESS",
}

func ChargeSourceFromCode(code int) ChargeSource {
	if s, ok := sourceByCode[code]; ok {
		return s
	}
	return SourceUnrecognized
}

func (s ChargeSource) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return Unrecognized
	}
	return sourceNames[s]
}

func (s ChargeSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Health is the decoded value of the health extra.
type Health int

const (
	HealthUnrecognized Health = iota
	HealthUnknown
	HealthGood
	HealthOverheat
	HealthDead
	HealthOverVoltage
	HealthUnspecifiedFailure
	HealthCold
)

const (
	HealthCodeUnknown            = 1
	HealthCodeGood               = 2
	HealthCodeOverheat           = 3
	HealthCodeDead               = 4
	HealthCodeOverVoltage        = 5
	HealthCodeUnspecifiedFailure = 6
	HealthCodeCold               = 7
)

var healthByCode = map[int]Health{
	HealthCodeUnknown:            HealthUnknown,
	HealthCodeGood:               HealthGood,
	HealthCodeOverheat:           HealthOverheat,
	HealthCodeDead:               HealthDead,
	HealthCodeOverVoltage:        HealthOverVoltage,
	HealthCodeUnspecifiedFailure: HealthUnspecifiedFailure,
	HealthCodeCold:               HealthCold,
}

var healthNames = [...]string{
	HealthUnrecognized:       Unrecognized,
	HealthUnknown:            "UNKNOWN",
	HealthGood:               "GOOD",
	HealthOverheat:           "OVERHEAT",
	HealthDead:               "DEAD",
	HealthOverVoltage:        "OVER_VOLTAGE",
	HealthUnspecifiedFailure: "UNSPECIFIED_FAILURE",
	HealthCold:               "COLD",
}

func HealthFromCode(code int) Health {
	if h, ok := healthByCode[code]; ok {
		return h
	}
	return HealthUnrecognized
}

func (h Health) String() string {
	if h < 0 || int(h) >= len(healthNames) {
		return Unrecognized
	}
	return healthNames[h]
}

func (h Health) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}
