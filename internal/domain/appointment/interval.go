package appointment

import (
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
)

var ErrInvalidInterval = httperr.ErrBusiness("invalid_interval")

// Interval is half-open: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() || !i.Start.Before(i.End) {
		return ErrInvalidInterval
	}
	return nil
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}
