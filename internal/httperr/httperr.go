package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code      string `json:"error_code"`
	Message   string `json:"message"`
	Conflicts any    `json:"conflicts,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

func Unavailable(c *gin.Context, code, message string) {
	Write(c, http.StatusServiceUnavailable, code, message)
}

// ======================================================
// BUSINESS CODE -> HTTP
// ======================================================

var statusByCode = map[string]int{
	"invalid_interval":           http.StatusBadRequest,
	"invalid_type":               http.StatusBadRequest,
	"invalid_title":              http.StatusBadRequest,
	"invalid_id":                 http.StatusBadRequest,
	"invalid_push_subscription":  http.StatusBadRequest,
	"appointment_not_found":      http.StatusNotFound,
	"suggestion_not_found":       http.StatusNotFound,
	"notification_not_found":     http.StatusNotFound,
	"profile_not_found":          http.StatusNotFound,
	"forbidden_role":             http.StatusForbidden,
	"not_owner":                  http.StatusForbidden,
	"invalid_state":              http.StatusConflict,
	"ministry_conflict":          http.StatusConflict,
	"conflict_requires_ack":      http.StatusConflict,
	"conflict_check_unavailable": http.StatusServiceUnavailable,
}

var messageByCode = map[string]string{
	"invalid_interval":           "Start time must be before end time.",
	"invalid_type":               "Unknown appointment type.",
	"invalid_title":              "Title is required.",
	"invalid_id":                 "Identifier is malformed.",
	"invalid_push_subscription":  "Push subscription is malformed.",
	"appointment_not_found":      "Appointment not found.",
	"suggestion_not_found":       "Suggestion not found.",
	"notification_not_found":     "Notification not found.",
	"profile_not_found":          "Profile not found.",
	"forbidden_role":             "Your role cannot perform this action.",
	"not_owner":                  "Only the creator can perform this action.",
	"invalid_state":              "Appointment cannot change to this state.",
	"ministry_conflict":          "The slot overlaps a confirmed ministry meeting.",
	"conflict_requires_ack":      "The slot overlaps other appointments.",
	"conflict_check_unavailable": "Could not check for conflicts, try again.",
}

// FromError writes err as a JSON error response. Business codes map to
// their status; anything else is a 500 with a generic retry message.
func FromError(c *gin.Context, err error) {
	var ce ConflictError
	if errors.As(err, &ce) {
		c.JSON(statusFor(ce.Code), HTTPError{
			Code:      ce.Code,
			Message:   messageByCode[ce.Code],
			Conflicts: ce.Conflicts,
		})
		return
	}

	if code, ok := CodeOf(err); ok {
		Write(c, statusFor(code), code, messageByCode[code])
		return
	}

	Internal(c, "internal_error", "Something went wrong, try again.")
}

func statusFor(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusBadRequest
}
