package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISO8601(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
		ok   bool
	}{
		{"epoch", 0, "1970-01-01T00:00:00.000Z", true},
		{"with_millis", 1711699200123, "2024-03-29T08:00:00.123Z", true},
		{"negative", -1, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ISO8601(tt.ms)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestYYMMDD(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
		ok   bool
	}{
		{"epoch", 0, "700101", true},
		{"quarterly_expiry", 1711699200000, "240329", true},
		{"end_of_day_utc", time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC).UnixMilli(), "251231", true},
		{"negative", -86400000, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := YYMMDD(tt.ms)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestISO8601_MatchesUTCCalendar(t *testing.T) {
	ref := time.Date(2023, 7, 4, 13, 5, 9, 42*int(time.Millisecond), time.UTC)

	got, ok := ISO8601(ref.UnixMilli())
	require.True(t, ok)

	parsed, err := time.Parse(time.RFC3339Nano, got)
	require.NoError(t, err)
	assert.True(t, ref.Equal(parsed))

	day, ok := YYMMDD(ref.UnixMilli())
	require.True(t, ok)
	assert.Equal(t, ref.Format("060102"), day)
}
