package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/mawaid-scheduler/internal/usecase/appointment"
)

type SuggestionHandler struct {
	resolveUC *ucAppointment.ResolveSuggestion
}

func NewSuggestionHandler(resolveUC *ucAppointment.ResolveSuggestion) *SuggestionHandler {
	return &SuggestionHandler{resolveUC: resolveUC}
}

func (h *SuggestionHandler) Accept(c *gin.Context) {
	ack, ok := acknowledged(c)
	if !ok {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.resolveUC.Accept(c.Request.Context(), actorFrom(c), c.Param("id"), ack)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *SuggestionHandler) Reject(c *gin.Context) {
	ap, err := h.resolveUC.Reject(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, ap)
}
