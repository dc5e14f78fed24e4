package handlers

import (
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/timezone"
)

// parseTimeParam reads an optional query bound. RFC 3339 is taken as is;
// a bare date means midnight in the service timezone.
func parseTimeParam(raw, tz string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation("2006-01-02", raw, timezone.Location(tz))
	if err != nil {
		return nil, err
	}
	return &t, nil
}
