package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/middleware"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/push"
)

type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	SetPushToken(ctx context.Context, profileID string, token *string) error
}

type MeHandler struct {
	profiles ProfileStore
	log      *zap.Logger
}

func NewMeHandler(profiles ProfileStore, log *zap.Logger) *MeHandler {
	return &MeHandler{profiles: profiles, log: log}
}

type PushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *MeHandler) GetMe(c *gin.Context) {
	p, err := h.profiles.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": gin.H{
			"id":        p.ID,
			"full_name": p.FullName,
			"role":      p.Role,
		},
		"push_enabled": p.PushToken != nil && *p.PushToken != "",
	})
}

// PutPushToken stores a Web Push subscription (JSON) or an Expo token.
// Malformed subscriptions are refused before anything is written.
func (h *MeHandler) PutPushToken(c *gin.Context) {
	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if err := push.ValidateToken(req.Token); err != nil {
		httperr.FromError(c, err)
		return
	}

	userID := middleware.UserID(c)
	if err := h.profiles.SetPushToken(c.Request.Context(), userID, &req.Token); err != nil {
		h.log.Error("store push token failed", zap.String("user_id", userID), zap.Error(err))
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *MeHandler) DeletePushToken(c *gin.Context) {
	if err := h.profiles.SetPushToken(c.Request.Context(), middleware.UserID(c), nil); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
