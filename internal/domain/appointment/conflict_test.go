package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeStub returns rows as a store would, or a canned error.
type storeStub struct {
	rows  []Conflict
	err   error
	calls int
}

func (s *storeStub) FindOverlapping(_ context.Context, start, end time.Time, excludeID string) ([]Conflict, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []Conflict
	for _, r := range s.rows {
		if r.ID == excludeID || !r.Status.Blocking() {
			continue
		}
		if r.StartTime.Before(end) && start.Before(r.EndTime) {
			out = append(out, r)
		}
	}
	return out, nil
}

func at(h, m int) time.Time {
	return time.Date(2026, 4, 12, h, m, 0, 0, time.UTC)
}

func row(id string, t Type, s Status, start, end time.Time) Conflict {
	return Conflict{ID: id, Title: id, Type: t, Status: s, StartTime: start, EndTime: end}
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		existing    Conflict
		wantOutcome Outcome
		wantIDs     []string
	}{
		{
			name:        "confirmed ministry blocks",
			existing:    row("X", TypeMinistry, StatusConfirmed, at(10, 0), at(11, 0)),
			wantOutcome: OutcomeBlock,
			wantIDs:     []string{"X"},
		},
		{
			name:        "confirmed patient warns",
			existing:    row("Y", TypePatient, StatusConfirmed, at(10, 0), at(11, 0)),
			wantOutcome: OutcomeWarning,
			wantIDs:     []string{"Y"},
		},
		{
			name:        "cancelled ministry is ignored",
			existing:    row("Z", TypeMinistry, StatusCancelled, at(10, 0), at(11, 0)),
			wantOutcome: OutcomeNone,
			wantIDs:     []string{},
		},
		{
			name:        "pending ministry only warns",
			existing:    row("P", TypeMinistry, StatusPending, at(10, 0), at(11, 0)),
			wantOutcome: OutcomeWarning,
			wantIDs:     []string{"P"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(&storeStub{rows: []Conflict{tt.existing}}, nil)

			res, err := e.Evaluate(context.Background(), at(10, 30), at(11, 30), "")
			require.NoError(t, err)

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantOutcome == OutcomeBlock, res.HasMinistryConflict)
			assert.Equal(t, tt.wantOutcome == OutcomeWarning, res.HasWarningConflict)

			ids := []string{}
			for _, c := range res.Conflicts {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEvaluate_BlockWinsOverWarning(t *testing.T) {
	e := NewEvaluator(&storeStub{rows: []Conflict{
		row("p", TypePatient, StatusPending, at(9, 0), at(10, 30)),
		row("m", TypeMinistry, StatusConfirmed, at(10, 45), at(12, 0)),
	}}, nil)

	res, err := e.Evaluate(context.Background(), at(10, 0), at(11, 0), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeBlock, res.Outcome)
	assert.True(t, res.HasMinistryConflict)
	assert.False(t, res.HasWarningConflict)
	assert.Len(t, res.Conflicts, 2)
}

func TestEvaluate_NonOverlappingIsEmpty(t *testing.T) {
	e := NewEvaluator(&storeStub{rows: []Conflict{
		row("before", TypeMinistry, StatusConfirmed, at(8, 0), at(10, 0)),
		row("after", TypeMinistry, StatusConfirmed, at(11, 0), at(12, 0)),
	}}, nil)

	res, err := e.Evaluate(context.Background(), at(10, 0), at(11, 0), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeNone, res.Outcome)
	assert.NotNil(t, res.Conflicts)
	assert.Empty(t, res.Conflicts)
}

func TestEvaluate_ExcludesSelf(t *testing.T) {
	e := NewEvaluator(&storeStub{rows: []Conflict{
		row("self", TypeMinistry, StatusConfirmed, at(10, 0), at(11, 0)),
	}}, nil)

	res, err := e.Evaluate(context.Background(), at(10, 0), at(11, 0), "self")
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, res.Outcome)
}

func TestEvaluate_InvalidIntervalSkipsStore(t *testing.T) {
	store := &storeStub{}
	e := NewEvaluator(store, nil)

	for _, iv := range [][2]time.Time{
		{at(11, 0), at(10, 0)},
		{at(10, 0), at(10, 0)},
		{{}, at(10, 0)},
	} {
		_, err := e.Evaluate(context.Background(), iv[0], iv[1], "")
		assert.ErrorIs(t, err, ErrInvalidInterval)
	}
	assert.Zero(t, store.calls)
}

func TestEvaluate_QueryFailureIsIndeterminate(t *testing.T) {
	cause := errors.New("connection refused")
	e := NewEvaluator(&storeStub{err: cause}, nil)

	res, err := e.Evaluate(context.Background(), at(10, 0), at(11, 0), "")
	require.NoError(t, err)

	assert.Equal(t, OutcomeIndeterminate, res.Outcome)
	assert.False(t, res.HasMinistryConflict)
	assert.False(t, res.HasWarningConflict)
	assert.Empty(t, res.Conflicts)
	assert.ErrorIs(t, res.Cause, cause)
}

// A store that ignores its own filters must still not leak terminal rows
// or non-overlapping rows into the result.
func TestClassify_FiltersMisbehavingStore(t *testing.T) {
	rows := []Conflict{
		row("cancelled", TypeMinistry, StatusCancelled, at(10, 0), at(11, 0)),
		row("rejected", TypeMinistry, StatusRejected, at(10, 0), at(11, 0)),
		row("adjacent", TypeMinistry, StatusConfirmed, at(11, 0), at(12, 0)),
		row("self", TypeMinistry, StatusConfirmed, at(10, 0), at(11, 0)),
		row("real", TypeExternal, StatusSuggested, at(10, 30), at(10, 45)),
	}

	res := Classify(Interval{Start: at(10, 0), End: at(11, 0)}, rows, "self")

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "real", res.Conflicts[0].ID)
	assert.Equal(t, OutcomeWarning, res.Outcome)
}

func TestInterval_Overlaps(t *testing.T) {
	a := Interval{Start: at(10, 0), End: at(11, 0)}

	assert.True(t, a.Overlaps(Interval{Start: at(10, 59), End: at(12, 0)}))
	assert.True(t, a.Overlaps(Interval{Start: at(9, 0), End: at(12, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: at(11, 0), End: at(12, 0)}))
	assert.False(t, a.Overlaps(Interval{Start: at(9, 0), End: at(10, 0)}))
}
