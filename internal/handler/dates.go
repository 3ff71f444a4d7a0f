package handler

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// parseRangeBound accepts RFC3339 or a bare date. A bare end date covers the
// whole day, so 2024-02-10..2024-02-10 is one full day.
func parseRangeBound(raw string, end bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", raw)
	}
	if end {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
