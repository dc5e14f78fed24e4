package reconcile

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/realtime"
)

// Appointments mirrors the appointments table, ordered by start time.
type Appointments struct {
	mu  sync.RWMutex
	c   *Collection[models.Appointment]
	src AppointmentSource
}

func NewAppointments(src AppointmentSource) *Appointments {
	return &Appointments{
		c: NewCollection(
			func(a models.Appointment) string { return a.ID },
			func(held, in models.Appointment) bool { return in.UpdatedAt.Before(held.UpdatedAt) },
			compareAppointments,
		),
		src: src,
	}
}

func compareAppointments(a, b models.Appointment) int {
	if c := a.StartTime.Compare(b.StartTime); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// FetchAll resynchronises from the store. Events applied while the
// fetch runs win over the snapshot. On failure the current projection is
// kept.
func (p *Appointments) FetchAll(ctx context.Context) ([]models.Appointment, error) {
	p.mu.Lock()
	p.c.BeginFetch()
	p.mu.Unlock()

	rows, err := p.src.ListAppointments(ctx, nil, nil)

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.c.EndFetch()
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	p.c.Reset(rows)
	return p.c.List(), nil
}

// Apply mirrors one appointments change event. It reports whether the
// projection changed.
func (p *Appointments) Apply(ev realtime.ChangeEvent) (bool, error) {
	if ev.Table != realtime.TableAppointments {
		return false, realtime.ErrUnknownTable
	}

	row, err := realtime.Decode[models.Appointment](ev)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch ev.Kind {
	case realtime.KindInsert, realtime.KindUpdate:
		return p.c.Upsert(row), nil
	case realtime.KindDelete:
		_, ok := p.c.Remove(row.ID)
		return ok, nil
	}
	return false, realtime.ErrUnknownKind
}

func (p *Appointments) List() []models.Appointment {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c.List()
}

func (p *Appointments) Get(id string) (models.Appointment, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c.Get(id)
}

func (p *Appointments) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.c.Len()
}

func (p *Appointments) CountByStatus() map[string]int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]int)
	for _, a := range p.c.List() {
		out[a.Status]++
	}
	return out
}

// Between returns the appointments overlapping [from, to) whose status is
// not in skip.
func (p *Appointments) Between(from, to time.Time, skip ...string) []models.Appointment {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.c.Filter(func(a models.Appointment) bool {
		if slices.Contains(skip, a.Status) {
			return false
		}
		return a.StartTime.Before(to) && from.Before(a.EndTime)
	})
}
