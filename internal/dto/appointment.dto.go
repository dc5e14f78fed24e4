package dto

import (
	"time"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

type AppointmentListDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Location  *string   `json:"location,omitempty"`
	CreatedBy string    `json:"created_by"`
}

func AppointmentList(apps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		out = append(out, AppointmentListDTO{
			ID:        ap.ID,
			Title:     ap.Title,
			Type:      ap.Type,
			Status:    ap.Status,
			StartTime: ap.StartTime,
			EndTime:   ap.EndTime,
			Location:  ap.Location,
			CreatedBy: ap.CreatedBy,
		})
	}
	return out
}

type DashboardDTO struct {
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Suggested int `json:"suggested"`

	Today       []AppointmentListDTO `json:"today"`
	UnreadCount int                  `json:"unread_count"`
}

type NotificationListDTO struct {
	Data        []models.Notification `json:"data"`
	Total       int                   `json:"total"`
	UnreadCount int                   `json:"unread_count"`
}
