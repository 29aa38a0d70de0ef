package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RFC3339(t *testing.T) {
	got, err := Parse("2026-08-25T13:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 13, 0, 0, 0, time.UTC), got.UTC())
}

func TestParse_CalendarDate(t *testing.T) {
	got, err := Parse("2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.August, got.Month())
	assert.Equal(t, 25, got.Day())
	assert.Equal(t, 0, got.Hour())
}

func TestParse_Duration(t *testing.T) {
	before := time.Now().Add(-time.Hour)
	got, err := Parse("1h")
	require.NoError(t, err)
	after := time.Now().Add(-time.Hour)

	// "1h" means one hour ago, bracketed by the two measurements
	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestParse_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		spec string
	}{
		{name: "empty", spec: ""},
		{name: "garbage", spec: "yesterday"},
		{name: "bad date", spec: "2026-13-40"},
		{name: "bad duration", spec: "1 hour"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.spec)
			assert.Error(t, err)
		})
	}
}

func TestParseRange_BothBounds(t *testing.T) {
	since, until, err := ParseRange("2026-08-01T00:00:00Z", "2026-08-25T00:00:00Z")
	require.NoError(t, err)
	assert.True(t, since.Before(until))
}

func TestParseRange_Unbounded(t *testing.T) {
	since, until, err := ParseRange("", "")
	require.NoError(t, err)
	assert.True(t, since.IsZero())
	assert.True(t, until.IsZero())
}

func TestParseRange_InvertedBounds(t *testing.T) {
	_, _, err := ParseRange("2026-08-25T00:00:00Z", "2026-08-01T00:00:00Z")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "must be before")
}

func TestParseRange_BadSince(t *testing.T) {
	_, _, err := ParseRange("nope", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --updated-since")
}
