package codec

import "time"

const (
	iso8601Layout = "2006-01-02T15:04:05.000Z"
	yymmddLayout  = "060102"
)

// ISO8601 formats an epoch-millisecond timestamp as an RFC 3339 string in UTC
// with millisecond precision, e.g. "2024-03-29T08:00:00.000Z".
// It reports false for negative input.
func ISO8601(ms int64) (string, bool) {
	t, ok := utcMillis(ms)
	if !ok {
		return "", false
	}
	return t.Format(iso8601Layout), true
}

// YYMMDD formats an epoch-millisecond timestamp as a six digit UTC date, e.g. "240329".
// It reports false for negative input.
func YYMMDD(ms int64) (string, bool) {
	t, ok := utcMillis(ms)
	if !ok {
		return "", false
	}
	return t.Format(yymmddLayout), true
}

func utcMillis(ms int64) (time.Time, bool) {
	if ms < 0 {
		return time.Time{}, false
	}
	t := time.UnixMilli(ms).UTC()
	if t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}
