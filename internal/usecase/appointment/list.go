package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/dto"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute lists appointments by start time, optionally restricted to
// those overlapping [from, to).
func (uc *ListAppointments) Execute(
	ctx context.Context,
	from *time.Time,
	to *time.Time,
) ([]dto.AppointmentListDTO, error) {

	if from != nil && to != nil {
		if err := (domain.Interval{Start: *from, End: *to}).Validate(); err != nil {
			return nil, err
		}
	}

	apps, err := uc.repo.ListAppointments(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return dto.AppointmentList(apps), nil
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id string) (*models.Appointment, error) {
	return uc.repo.GetAppointment(ctx, id)
}

// SuggestionReader resyncs and returns the active suggestions of one
// appointment, newest first.
type SuggestionReader interface {
	FetchSuggestions(ctx context.Context, appointmentID string) ([]models.AppointmentSuggestion, error)
}

type ListSuggestions struct {
	repo        domain.Repository
	suggestions SuggestionReader
}

func NewListSuggestions(repo domain.Repository, suggestions SuggestionReader) *ListSuggestions {
	return &ListSuggestions{repo: repo, suggestions: suggestions}
}

// Execute returns the appointment's active suggestions, newest first,
// refreshing the shared projection on the way.
func (uc *ListSuggestions) Execute(
	ctx context.Context,
	appointmentID string,
) ([]models.AppointmentSuggestion, error) {

	if _, err := uc.repo.GetAppointment(ctx, appointmentID); err != nil {
		return nil, err
	}
	return uc.suggestions.FetchSuggestions(ctx, appointmentID)
}
