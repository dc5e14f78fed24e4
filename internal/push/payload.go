package push

import "github.com/BruksfildServices01/mawaid-scheduler/internal/models"

// Payload is what the service worker and the native client expect:
// {"title", "body", "data": {"appointmentId"}}.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Data  PayloadData `json:"data"`
}

type PayloadData struct {
	AppointmentID *string `json:"appointmentId"`
}

func PayloadFor(n models.Notification) Payload {
	return Payload{
		Title: n.Title,
		Body:  n.Body,
		Data:  PayloadData{AppointmentID: n.AppointmentID},
	}
}
