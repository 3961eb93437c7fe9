package utils

import "time"

// MonthStartUTC returns midnight on the first day of t's month in UTC.
func MonthStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FromUnixSeconds returns the zero time for t <= 0.
func FromUnixSeconds(t int64) time.Time {
	if t <= 0 {
		return time.Time{}
	}
	return time.Unix(t, 0).UTC()
}

func FormatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UnixPtrToRFC3339 renders an optional unix timestamp, empty when unset.
func UnixPtrToRFC3339(t *int64) string {
	if t == nil {
		return ""
	}
	return FormatRFC3339(FromUnixSeconds(*t))
}
