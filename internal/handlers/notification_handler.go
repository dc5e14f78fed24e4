package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	ucNotification "github.com/BruksfildServices01/mawaid-scheduler/internal/usecase/notification"
)

type NotificationHandler struct {
	listUC *ucNotification.ListNotifications
	readUC *ucNotification.MarkNotificationRead
}

func NewNotificationHandler(
	listUC *ucNotification.ListNotifications,
	readUC *ucNotification.MarkNotificationRead,
) *NotificationHandler {
	return &NotificationHandler{
		listUC: listUC,
		readUC: readUC,
	}
}

func (h *NotificationHandler) List(c *gin.Context) {
	out, err := h.listUC.Execute(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.readUC.Execute(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
