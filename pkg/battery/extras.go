package battery

import (
	"encoding/json"
	"math"
	"reflect"
)

// Payload keys of a battery-changed event.
const (
	ExtraLevel         = "level"
	ExtraScale         = "scale"
	ExtraStatus        = "status"
	ExtraHealth        = "health"
	ExtraPlugged       = "plugged"
	ExtraVoltage       = "voltage"
	ExtraTemperature   = "temperature"
	ExtraTechnology    = "technology"
	ExtraPresent       = "present"
	ExtraChargeCounter = "charge_counter"
)

// Rendered-only key holding the derived charging flag.
const keyIsCharging = "isCharging"

// Extras is the untyped key-value payload of a battery-changed event.
// Values are whatever the producer put there: Go integers, floats decoded
// from JSON, strings or booleans.
type Extras map[string]any

// Int returns the integer stored under key. ok is false when the key is
// absent or holds something that is not an integral number.
func (e Extras) Int(key string) (v int, ok bool) {
	raw, found := e[key]
	if !found || raw == nil {
		return 0, false
	}

	switch n := raw.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int64ToInt(n)
	case uint:
		return uint64ToInt(uint64(n))
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return uint64ToInt(uint64(n))
	case uint64:
		return uint64ToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	}

	return 0, false
}

// Values that do not fit an int are treated like wrong-typed ones.
func int64ToInt(i int64) (int, bool) {
	if i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

func uint64ToInt(u uint64) (int, bool) {
	if u > math.MaxInt {
		return 0, false
	}
	return int(u), true
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt) rounds up to 2^63, which is already out of range.
	if f < float64(math.MinInt) || f >= float64(math.MaxInt) {
		return 0, false
	}
	return int(f), true
}

// String returns the string stored under key.
func (e Extras) String(key string) (string, bool) {
	s, ok := e[key].(string)
	return s, ok
}

// Clone returns a shallow copy. Values are expected to be scalars.
func (e Extras) Clone() Extras {
	if e == nil {
		return nil
	}
	out := make(Extras, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Equal reports whether both payloads carry the same keys and values.
func (e Extras) Equal(other Extras) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		ov, ok := other[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}
