package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/mawaid-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	checkUC   *ucAppointment.CheckConflicts
	createUC  *ucAppointment.CreateAppointment
	reviewUC  *ucAppointment.ReviewAppointment
	cancelUC  *ucAppointment.CancelAppointment
	suggestUC *ucAppointment.SuggestAlternative
	listUC    *ucAppointment.ListAppointments
	getUC     *ucAppointment.GetAppointment
	suggUC    *ucAppointment.ListSuggestions

	timezone string
}

func NewAppointmentHandler(
	checkUC *ucAppointment.CheckConflicts,
	createUC *ucAppointment.CreateAppointment,
	reviewUC *ucAppointment.ReviewAppointment,
	cancelUC *ucAppointment.CancelAppointment,
	suggestUC *ucAppointment.SuggestAlternative,
	listUC *ucAppointment.ListAppointments,
	getUC *ucAppointment.GetAppointment,
	suggUC *ucAppointment.ListSuggestions,
	timezone string,
) *AppointmentHandler {
	return &AppointmentHandler{
		checkUC:   checkUC,
		createUC:  createUC,
		reviewUC:  reviewUC,
		cancelUC:  cancelUC,
		suggestUC: suggestUC,
		listUC:    listUC,
		getUC:     getUC,
		suggUC:    suggUC,
		timezone:  timezone,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ConflictCheckRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	ExcludeID string    `json:"exclude_id"`
}

type CreateAppointmentRequest struct {
	Title     string    `json:"title" binding:"required"`
	Type      string    `json:"type" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Location  *string   `json:"location"`
	Notes     *string   `json:"notes"`

	AcknowledgeConflicts bool `json:"acknowledge_conflicts"`
}

type AcknowledgeRequest struct {
	AcknowledgeConflicts bool `json:"acknowledge_conflicts"`
}

type SuggestRequest struct {
	SuggestedStart time.Time `json:"suggested_start" binding:"required"`
	SuggestedEnd   time.Time `json:"suggested_end" binding:"required"`
	Message        *string   `json:"message"`
}

// ======================================================
// HELPERS
// ======================================================

func actorFrom(c *gin.Context) ucAppointment.Actor {
	return ucAppointment.Actor{
		ID:   middleware.UserID(c),
		Role: middleware.Role(c),
	}
}

// acknowledged reads the optional acknowledge body of confirm/accept.
func acknowledged(c *gin.Context) (bool, bool) {
	if c.Request.ContentLength == 0 {
		return false, true
	}
	var req AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return false, false
	}
	return req.AcknowledgeConflicts, true
}

// ======================================================
// CONFLICTS
// ======================================================

func (h *AppointmentHandler) CheckConflicts(c *gin.Context) {
	var req ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	res, err := h.checkUC.Execute(c.Request.Context(), req.StartTime, req.EndTime, req.ExcludeID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, res)
}

// ======================================================
// CREATE / READ
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		Actor:                actorFrom(c),
		Title:                req.Title,
		Type:                 domain.Type(req.Type),
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Location:             req.Location,
		Notes:                req.Notes,
		AcknowledgeConflicts: req.AcknowledgeConflicts,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	from, err := parseTimeParam(c.Query("from"), h.timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_from", "Invalid from.")
		return
	}
	to, err := parseTimeParam(c.Query("to"), h.timezone)
	if err != nil {
		httperr.BadRequest(c, "invalid_to", "Invalid to.")
		return
	}

	out, err := h.listUC.Execute(c.Request.Context(), from, to)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	ap, err := h.getUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// REVIEW
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	ack, ok := acknowledged(c)
	if !ok {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.reviewUC.Confirm(c.Request.Context(), actorFrom(c), c.Param("id"), ack)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Reject(c *gin.Context) {
	ap, err := h.reviewUC.Reject(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	ap, err := h.cancelUC.Execute(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// SUGGESTIONS
// ======================================================

func (h *AppointmentHandler) Suggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	s, err := h.suggestUC.Execute(c.Request.Context(), ucAppointment.SuggestAlternativeInput{
		Actor:         actorFrom(c),
		AppointmentID: c.Param("id"),
		Start:         req.SuggestedStart,
		End:           req.SuggestedEnd,
		Message:       req.Message,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, s)
}

func (h *AppointmentHandler) ListSuggestions(c *gin.Context) {
	out, err := h.suggUC.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}
