package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/mawaid-scheduler/internal/config"
	domain "github.com/BruksfildServices01/mawaid-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/httperr"
	"github.com/BruksfildServices01/mawaid-scheduler/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// ProfileLookup resolves the token subject to its profile. The role is
// always read from the profile, never trusted from the token.
type ProfileLookup interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

func AuthMiddleware(cfg *config.Config, profiles ProfileLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, code := bearer(c)
		if code != "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {

			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		// profile ids are uuids; anything else cannot name a profile
		userID, err := token.Claims.GetSubject()
		if err != nil || uuid.Validate(userID) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token_payload"})
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			if httperr.IsBusiness(err, "profile_not_found") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "profile_not_found"})
				return
			}
			log.Error("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
			c.Abort()
			httperr.FromError(c, err)
			return
		}

		c.Set(ContextUserID, profile.ID)
		c.Set(ContextUserRole, domain.Role(profile.Role))

		c.Next()
	}
}

// bearer reads the Authorization header. EventSource clients cannot set
// headers, so an access_token query parameter is accepted as well.
func bearer(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("access_token"); t != "" {
			return t, ""
		}
		return "", "missing_authorization_header"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", "invalid_authorization_header"
	}
	return parts[1], ""
}

func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Role(c *gin.Context) domain.Role {
	r, _ := c.Get(ContextUserRole)
	role, _ := r.(domain.Role)
	return role
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.Abort()
		httperr.FromError(c, httperr.ErrBusiness("forbidden_role"))
	}
}
