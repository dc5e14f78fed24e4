package appointment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type fakeRepo struct {
	apps          map[string]*models.Appointment
	suggestions   map[string]*models.AppointmentSuggestion
	profiles      map[string]*models.Profile
	notifications []models.Notification

	overlapErr   error
	overlapCalls int
	locks        int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		apps:        map[string]*models.Appointment{},
		suggestions: map[string]*models.AppointmentSuggestion{},
		profiles: map[string]*models.Profile{
			"coord-1": {ID: "coord-1", Role: string(domain.RoleCoordinator)},
			"coord-2": {ID: "coord-2", Role: string(domain.RoleCoordinator)},
			"mgr-1":   {ID: "mgr-1", Role: string(domain.RoleManager)},
			"mgr-2":   {ID: "mgr-2", Role: string(domain.RoleManager)},
		},
	}
}

func (f *fakeRepo) seed(ap models.Appointment) *models.Appointment {
	if ap.ID == "" {
		ap.ID = uuid.NewString()
	}
	cp := ap
	f.apps[ap.ID] = &cp
	return &cp
}

func (f *fakeRepo) notified(kind domain.NotificationType) []string {
	var out []string
	for _, n := range f.notifications {
		if n.Type == string(kind) {
			out = append(out, n.RecipientID)
		}
	}
	sort.Strings(out)
	return out
}

func (f *fakeRepo) activeSuggestions(appointmentID string) int {
	n := 0
	for _, s := range f.suggestions {
		if s.AppointmentID == appointmentID && s.IsActive {
			n++
		}
	}
	return n
}

func (f *fakeRepo) Transaction(ctx context.Context, fn func(ctx context.Context, tx domain.Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) LockSchedule(context.Context) error {
	f.locks++
	return nil
}

func (f *fakeRepo) FindOverlapping(_ context.Context, start, end time.Time, excludeID string) ([]domain.Conflict, error) {
	f.overlapCalls++
	if f.overlapErr != nil {
		return nil, f.overlapErr
	}

	var out []domain.Conflict
	for _, ap := range f.apps {
		if ap.ID == excludeID || !domain.Status(ap.Status).Blocking() {
			continue
		}
		if ap.StartTime.Before(end) && start.Before(ap.EndTime) {
			out = append(out, domain.Conflict{
				ID:        ap.ID,
				Title:     ap.Title,
				Type:      domain.Type(ap.Type),
				Status:    domain.Status(ap.Status),
				StartTime: ap.StartTime,
				EndTime:   ap.EndTime,
			})
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	ap.ID = uuid.NewString()
	cp := *ap
	f.apps[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, id string) (*models.Appointment, error) {
	ap, ok := f.apps[id]
	if !ok {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	cp := *ap
	return &cp, nil
}

func (f *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	cp := *ap
	f.apps[ap.ID] = &cp
	return nil
}

func (f *fakeRepo) ListAppointments(_ context.Context, from, to *time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range f.apps {
		if from != nil && !ap.EndTime.After(*from) {
			continue
		}
		if to != nil && !ap.StartTime.Before(*to) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeRepo) CreateSuggestion(_ context.Context, s *models.AppointmentSuggestion) error {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now()
	cp := *s
	f.suggestions[s.ID] = &cp
	return nil
}

func (f *fakeRepo) GetSuggestion(_ context.Context, id string) (*models.AppointmentSuggestion, error) {
	s, ok := f.suggestions[id]
	if !ok {
		return nil, httperr.ErrBusiness("suggestion_not_found")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) ListActiveSuggestions(_ context.Context, appointmentID string) ([]models.AppointmentSuggestion, error) {
	var out []models.AppointmentSuggestion
	for _, s := range f.suggestions {
		if s.AppointmentID == appointmentID && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) DeactivateSuggestions(_ context.Context, appointmentID string) error {
	for _, s := range f.suggestions {
		if s.AppointmentID == appointmentID {
			s.IsActive = false
		}
	}
	return nil
}

func (f *fakeRepo) GetProfile(_ context.Context, id string) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, httperr.ErrBusiness("profile_not_found")
	}
	return p, nil
}

func (f *fakeRepo) ListProfileIDsByRole(_ context.Context, role domain.Role) ([]string, error) {
	var ids []string
	for id, p := range f.profiles {
		if p.Role == string(role) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeRepo) CreateNotifications(_ context.Context, ns []models.Notification) error {
	f.notifications = append(f.notifications, ns...)
	return nil
}

type fakeAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *fakeAuditor) Dispatch(ev audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *fakeAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

var _ domain.Repository = (*fakeRepo)(nil)
