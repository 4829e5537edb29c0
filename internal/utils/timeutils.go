package utils

import (
	"time"
)

// ParseRFC3339 parses a reading timestamp into UTC. Fractional seconds are
// accepted; an empty or malformed value is KindInvalidInput.
func ParseRFC3339(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, InvalidInput("timestamp", "missing timestamp")
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, InvalidInput("timestamp", "%q is not an RFC3339 timestamp", value)
	}
	return t.UTC(), nil
}

// DurationDays returns the fractional days from start to end; negative if end precedes start.
func DurationDays(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}
