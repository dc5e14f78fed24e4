package appointment

import (
	"fmt"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type NotificationType string

const (
	NotifNewAppointment        NotificationType = "new_appointment"
	NotifAppointmentConfirmed  NotificationType = "appointment_confirmed"
	NotifAppointmentRejected   NotificationType = "appointment_rejected"
	NotifAlternativeSuggested  NotificationType = "alternative_suggested"
	NotifSuggestionAccepted    NotificationType = "suggestion_accepted"
	NotifSuggestionRejected    NotificationType = "suggestion_rejected"
	NotifAppointmentCancelled  NotificationType = "appointment_cancelled"
	NotifMinistryAutoConfirmed NotificationType = "ministry_auto_confirmed"
)

var notificationTitles = map[NotificationType]string{
	NotifNewAppointment:        "New appointment awaiting review",
	NotifAppointmentConfirmed:  "Appointment confirmed",
	NotifAppointmentRejected:   "Appointment rejected",
	NotifAlternativeSuggested:  "Alternative time suggested",
	NotifSuggestionAccepted:    "Suggested time accepted",
	NotifSuggestionRejected:    "Suggested time rejected",
	NotifAppointmentCancelled:  "Appointment cancelled",
	NotifMinistryAutoConfirmed: "Ministry meeting confirmed automatically",
}

// NotificationsFor builds one notification of kind t about ap for each
// recipient. The actor never notifies themselves.
func NotificationsFor(
	t NotificationType,
	ap *models.Appointment,
	actor string,
	recipients ...string,
) []models.Notification {

	out := make([]models.Notification, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, r := range recipients {
		if r == "" || r == actor {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}

		id := ap.ID
		out = append(out, models.Notification{
			RecipientID:   r,
			Type:          string(t),
			Title:         notificationTitles[t],
			Body:          fmt.Sprintf("%s (%s)", ap.Title, ap.StartTime.Format("2006-01-02 15:04")),
			AppointmentID: &id,
		})
	}
	return out
}
