package util

import (
	"strconv"
	"time"
)

// ParseTime tries RFC3339, RFC3339Nano, plain date, and unix seconds.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		return time.Unix(ts, 0), true
	}
	return time.Time{}, false
}

// AlignHour truncates a timestamp to the start of its hour.
func AlignHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// AlignRange truncates a time range to hourly bucket boundaries, the
// granularity readings are stored at.
func AlignRange(from, to time.Time) (time.Time, time.Time) {
	return AlignHour(from), AlignHour(to)
}
