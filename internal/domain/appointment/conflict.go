package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Conflict is one row of the overlap query. It is produced per call and
// never cached.
type Conflict struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      Type      `json:"type"`
	Status    Status    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type Outcome string

const (
	OutcomeNone          Outcome = "none"
	OutcomeWarning       Outcome = "warning"
	OutcomeBlock         Outcome = "block"
	OutcomeIndeterminate Outcome = "indeterminate"
)

type ConflictCheckResult struct {
	Outcome             Outcome    `json:"outcome"`
	HasMinistryConflict bool       `json:"has_ministry_conflict"`
	HasWarningConflict  bool       `json:"has_warning_conflict"`
	Conflicts           []Conflict `json:"conflicts"`

	// Cause is set when Outcome is OutcomeIndeterminate.
	Cause error `json:"-"`
}

// OverlapQuerier is the store's overlap query. Implementations return the
// appointments overlapping [start, end), without excludeID and without
// cancelled or rejected rows.
type OverlapQuerier interface {
	FindOverlapping(
		ctx context.Context,
		start time.Time,
		end time.Time,
		excludeID string,
	) ([]Conflict, error)
}

type Evaluator struct {
	q   OverlapQuerier
	log *zap.Logger
}

func NewEvaluator(q OverlapQuerier, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{q: q, log: log}
}

// Evaluate classifies [start, end) against the current overlap set.
//
// A malformed interval is returned as ErrInvalidInterval before the store
// is queried. A failing query is not an error: it yields
// OutcomeIndeterminate, which callers must treat as "do not book".
func (e *Evaluator) Evaluate(
	ctx context.Context,
	start time.Time,
	end time.Time,
	excludeID string,
) (ConflictCheckResult, error) {

	candidate := Interval{Start: start, End: end}
	if err := candidate.Validate(); err != nil {
		return ConflictCheckResult{}, err
	}

	rows, err := e.q.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		e.log.Warn("overlap query failed",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.String("exclude_id", excludeID),
			zap.Error(err),
		)
		return Indeterminate(err), nil
	}

	return Classify(candidate, rows, excludeID), nil
}

func Indeterminate(cause error) ConflictCheckResult {
	return ConflictCheckResult{
		Outcome:   OutcomeIndeterminate,
		Conflicts: []Conflict{},
		Cause:     cause,
	}
}

// Classify applies the blocking rules to an overlap set. Rows that cannot
// conflict (excluded id, cancelled, rejected, not actually overlapping) are
// dropped first. First match wins: a confirmed ministry meeting blocks, any
// other overlap warns.
func Classify(candidate Interval, rows []Conflict, excludeID string) ConflictCheckResult {
	conflicts := make([]Conflict, 0, len(rows))
	for _, r := range rows {
		if excludeID != "" && r.ID == excludeID {
			continue
		}
		if !r.Status.Blocking() {
			continue
		}
		if !candidate.Overlaps(Interval{Start: r.StartTime, End: r.EndTime}) {
			continue
		}
		conflicts = append(conflicts, r)
	}

	res := ConflictCheckResult{
		Outcome:   OutcomeNone,
		Conflicts: conflicts,
	}

	for _, c := range conflicts {
		if c.Type == TypeMinistry && c.Status == StatusConfirmed {
			res.Outcome = OutcomeBlock
			res.HasMinistryConflict = true
			return res
		}
	}

	if len(conflicts) > 0 {
		res.Outcome = OutcomeWarning
		res.HasWarningConflict = true
	}

	return res
}
