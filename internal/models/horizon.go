package models

import (
	"bytes"
	"math"
	"strconv"
)

// Horizon is a duration-like quantity that may be unbounded. Infinities are
// encoded in JSON as the strings "+Inf" and "-Inf" so results stay serializable.
type Horizon float64

// Infinite is the unbounded horizon.
var Infinite = Horizon(math.Inf(1))

// IsInf reports whether h is unbounded in either direction.
func (h Horizon) IsInf() bool { return math.IsInf(float64(h), 0) }

// MarshalJSON implements json.Marshaler.
func (h Horizon) MarshalJSON() ([]byte, error) {
	v := float64(h)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *Horizon) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = Horizon(math.NaN())
		return nil
	}
	if len(data) > 1 && data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		data = []byte(unquoted)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*h = Horizon(v)
	return nil
}
