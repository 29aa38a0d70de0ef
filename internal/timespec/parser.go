package timespec

import (
	"fmt"
	"time"
)

// Parse parses a time specification into a time.Time.
// Supports three formats:
//   - Go duration format: "1h", "30m", "1h30m", "72h"
//   - RFC3339 timestamps: "2026-08-25T13:00:00Z"
//   - Calendar dates: "2026-08-25" (midnight, local time)
//
// A duration is interpreted as an offset into the past, so "24h" means
// "24 hours ago".
func Parse(spec string) (time.Time, error) {
	if spec == "" {
		return time.Time{}, fmt.Errorf("empty time specification")
	}

	// Most specific format first.
	if t, err := time.Parse(time.RFC3339, spec); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation("2006-01-02", spec, time.Local); err == nil {
		return t, nil
	}

	if d, err := time.ParseDuration(spec); err == nil {
		return time.Now().Add(-d), nil
	}

	return time.Time{}, fmt.Errorf("invalid time specification: %s (use duration like '72h', date like '2026-08-25' or RFC3339 like '2026-08-25T13:00:00Z')", spec)
}

// ParseRange parses both --updated-since and --updated-until flags into a time
// range. Zero times indicate "no bound" for that end of the range. When both
// bounds are given, since must fall before until.
func ParseRange(since, until string) (time.Time, time.Time, error) {
	var sinceAt, untilAt time.Time
	var err error

	if since != "" {
		sinceAt, err = Parse(since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --updated-since: %w", err)
		}
	}

	if until != "" {
		untilAt, err = Parse(until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --updated-until: %w", err)
		}
	}

	if !sinceAt.IsZero() && !untilAt.IsZero() && !sinceAt.Before(untilAt) {
		return time.Time{}, time.Time{}, fmt.Errorf("--updated-since must be before --updated-until")
	}

	return sinceAt, untilAt, nil
}
