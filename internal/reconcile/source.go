package reconcile

import (
	"context"
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

// AppointmentSource is the store of record for appointment resyncs.
type AppointmentSource interface {
	ListAppointments(ctx context.Context, from, to *time.Time) ([]models.Appointment, error)
}

type SuggestionSource interface {
	ListActiveSuggestions(ctx context.Context, appointmentID string) ([]models.AppointmentSuggestion, error)
}

type NotificationSource interface {
	ListNotifications(ctx context.Context, recipientID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipientID string) error
}
