package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/audit"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httpresp"
)

type AuditLogsHandler struct {
	reader   audit.Reader
	timezone string
	log      *zap.Logger
}

func NewAuditLogsHandler(reader audit.Reader, tz string, log *zap.Logger) *AuditLogsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditLogsHandler{reader: reader, timezone: tz, log: log}
}

// List serves the audit trail. A bare-date "to" includes the whole day.
func (h *AuditLogsHandler) List(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"), h.timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "from must be a date or RFC 3339 time.")
		return
	}

	toRaw := c.Query("to")
	to, err := parseTimeParam(toRaw, h.timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "to must be a date or RFC 3339 time.")
		return
	}
	if to != nil && !strings.Contains(toRaw, "T") {
		next := to.AddDate(0, 0, 1)
		to = &next
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(audit.DefaultPageSize)))

	out, err := h.reader.List(c.Request.Context(), audit.Filter{
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		ActorID:  c.Query("actor_id"),
		From:     from,
		To:       to,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.log.Error("list audit logs", zap.Error(err))
		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.OK(c, out)
}
