package reconcile

import (
	"cmp"
	"context"
	"fmt"
	"sync"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
)

const retiredSuggestions = 4096

// Suggestions mirrors the active rows of appointment_suggestions. At most
// one suggestion per appointment is active in the projection: when several
// claim to be, the newest wins.
//
// Inactive suggestions are not held. Their ids are remembered (up to a
// bound) so that a late active image cannot revive them.
type Suggestions struct {
	mu  sync.RWMutex
	c   *Collection[models.AppointmentSuggestion]
	src SuggestionSource

	retired      map[string]struct{}
	retiredOrder []string
	maxRetired   int
}

func NewSuggestions(src SuggestionSource) *Suggestions {
	return &Suggestions{
		c: NewCollection(
			func(s models.AppointmentSuggestion) string { return s.ID },
			func(held, in models.AppointmentSuggestion) bool { return in.CreatedAt.Before(held.CreatedAt) },
			newestSuggestionFirst,
		),
		src:        src,
		retired:    make(map[string]struct{}),
		maxRetired: retiredSuggestions,
	}
}

func newestSuggestionFirst(a, b models.AppointmentSuggestion) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// FetchSuggestions resyncs the active suggestions of one appointment and
// returns them newest first. A held suggestion missing from the fetch is
// retired unless an event touched it while the fetch was running.
func (p *Suggestions) FetchSuggestions(
	ctx context.Context,
	appointmentID string,
) ([]models.AppointmentSuggestion, error) {

	p.mu.Lock()
	p.c.BeginFetch()
	p.mu.Unlock()

	rows, err := p.src.ListActiveSuggestions(ctx, appointmentID)

	p.mu.Lock()
	defer p.mu.Unlock()
	defer p.c.EndFetch()

	if err != nil {
		return nil, fmt.Errorf("fetch suggestions: %w", err)
	}

	fetched := make(map[string]struct{}, len(rows))
	for _, s := range rows {
		if s.AppointmentID != appointmentID || !s.IsActive {
			continue
		}
		fetched[s.ID] = struct{}{}
		p.storeLocked(s)
	}

	for _, s := range p.activeLocked(appointmentID) {
		if _, ok := fetched[s.ID]; ok || p.c.Touched(s.ID) {
			continue
		}
		p.retireLocked(s.ID)
	}

	p.enforceSingleActiveLocked(appointmentID)
	return p.activeLocked(appointmentID), nil
}

func (p *Suggestions) Apply(ev realtime.ChangeEvent) (bool, error) {
	if ev.Table != realtime.TableSuggestions {
		return false, realtime.ErrUnknownTable
	}

	row, err := realtime.Decode[models.AppointmentSuggestion](ev)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case realtime.KindInsert, realtime.KindUpdate:
		return p.storeLocked(row), nil
	case realtime.KindDelete:
		return p.retireLocked(row.ID), nil
	}
	return false, realtime.ErrUnknownKind
}

// Active returns the active suggestions of an appointment, newest first.
func (p *Suggestions) Active(appointmentID string) []models.AppointmentSuggestion {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeLocked(appointmentID)
}

// Len is the number of held (active) suggestions.
func (p *Suggestions) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c.Len()
}

// storeLocked applies one row image and reports whether the projection
// changed. Deactivation is one-way.
func (p *Suggestions) storeLocked(s models.AppointmentSuggestion) bool {
	if _, ok := p.retired[s.ID]; ok {
		return false
	}
	if !s.IsActive {
		return p.retireLocked(s.ID)
	}
	if !p.c.Upsert(s) {
		return false
	}
	p.enforceSingleActiveLocked(s.AppointmentID)
	return true
}

// retireLocked drops id and remembers it as inactive. It reports whether
// id was held.
func (p *Suggestions) retireLocked(id string) bool {
	_, held := p.c.Remove(id)

	if _, ok := p.retired[id]; !ok {
		p.retired[id] = struct{}{}
		p.retiredOrder = append(p.retiredOrder, id)
		if len(p.retiredOrder) > p.maxRetired {
			delete(p.retired, p.retiredOrder[0])
			p.retiredOrder = p.retiredOrder[1:]
		}
	}
	return held
}

func (p *Suggestions) activeLocked(appointmentID string) []models.AppointmentSuggestion {
	return p.c.Filter(func(s models.AppointmentSuggestion) bool {
		return s.AppointmentID == appointmentID
	})
}

func (p *Suggestions) enforceSingleActiveLocked(appointmentID string) {
	active := p.activeLocked(appointmentID)
	if len(active) < 2 {
		return
	}
	for _, s := range active[1:] {
		p.retireLocked(s.ID)
	}
}
