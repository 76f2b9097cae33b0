package utils

import (
	"strconv"
	"time"
)

// ParsePositiveInt returns the integer in raw, or 0 when it is empty, malformed or not positive
func ParsePositiveInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ParseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
// A plain "to" date is extended to the end of that day.
func ParseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
