package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/dto"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/reconcile"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/timezone"
)

// DashboardHandler serves counters from the process-wide appointment
// projection, so it answers without touching the database for them.
type DashboardHandler struct {
	appointments  *reconcile.Appointments
	notifications reconcile.NotificationSource
	timezone      string
	now           func() time.Time
}

func NewDashboardHandler(
	appointments *reconcile.Appointments,
	notifications reconcile.NotificationSource,
	tz string,
) *DashboardHandler {
	return &DashboardHandler{
		appointments:  appointments,
		notifications: notifications,
		timezone:      tz,
		now:           time.Now,
	}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	counts := h.appointments.CountByStatus()

	from, to := timezone.DayBounds(h.now(), h.timezone)
	today := h.appointments.Between(from, to,
		string(domain.StatusCancelled),
		string(domain.StatusRejected),
	)

	unread := reconcile.NewNotifications(h.notifications, middleware.UserID(c))
	if _, err := unread.FetchNotifications(c.Request.Context()); err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, dto.DashboardDTO{
		Pending:     counts[string(domain.StatusPending)],
		Confirmed:   counts[string(domain.StatusConfirmed)],
		Suggested:   counts[string(domain.StatusSuggested)],
		Today:       dto.AppointmentList(today),
		UnreadCount: unread.UnreadCount(),
	})
}
