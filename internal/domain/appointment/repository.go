package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type Repository interface {
	OverlapQuerier

	// -------- Transactions --------
	// Transaction runs fn against a repository bound to one database
	// transaction.
	Transaction(
		ctx context.Context,
		fn func(ctx context.Context, tx Repository) error,
	) error

	// LockSchedule serialises bookings for the rest of the current
	// transaction so check-then-write cannot race.
	LockSchedule(ctx context.Context) error

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		id string,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointments(
		ctx context.Context,
		from *time.Time,
		to *time.Time,
	) ([]models.Appointment, error)

	// -------- Suggestion --------
	CreateSuggestion(
		ctx context.Context,
		s *models.AppointmentSuggestion,
	) error

	GetSuggestion(
		ctx context.Context,
		id string,
	) (*models.AppointmentSuggestion, error)

	ListActiveSuggestions(
		ctx context.Context,
		appointmentID string,
	) ([]models.AppointmentSuggestion, error)

	DeactivateSuggestions(
		ctx context.Context,
		appointmentID string,
	) error

	// -------- Profile / Notification --------
	GetProfile(
		ctx context.Context,
		id string,
	) (*models.Profile, error)

	ListProfileIDsByRole(
		ctx context.Context,
		role Role,
	) ([]string, error)

	CreateNotifications(
		ctx context.Context,
		ns []models.Notification,
	) error
}
