package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys
const (
	userContextKey = "user"
	userIDKey      = "user_id"
	userLevelKey   = "user_level"
)

// UserContext holds the authenticated user reloaded for this request
type UserContext struct {
	UserID     uuid.UUID             `json:"user_id"`
	Username   string                `json:"username"`
	UserLevel  models.UserLevel      `json:"user_level"`
	IsActive   bool                  `json:"is_active"`
	IsApproved bool                  `json:"is_approved"`
	Claims     *services.TokenClaims `json:"-"`
}

// Actor converts the context to the caller identity services expect
func (u *UserContext) Actor() services.Actor {
	return services.Actor{ID: u.UserID, Username: u.Username, Level: u.UserLevel}
}

// SessionResolver turns a bearer token into the current user
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.User, *services.TokenClaims, error)
}

// AuthMiddleware validates the bearer token and reloads the user on every
// request, so deactivation and revocation take effect immediately.
func AuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "missing_authorization",
				"message": "Authorization header is required",
				"status":  http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		// Check Bearer token format
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" || tokenParts[1] == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "invalid_authorization_format",
				"message": "Authorization header must be in format: Bearer <token>",
				"status":  http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		user, claims, err := resolver.ResolveSession(c.Request.Context(), tokenParts[1])
		if err != nil {
			status, code := sessionErrorStatus(err)
			message := err.Error()
			if status == http.StatusInternalServerError {
				message = "Failed to validate session"
			}
			c.JSON(status, gin.H{
				"error":   code,
				"message": message,
				"status":  status,
			})
			c.Abort()
			return
		}

		userCtx := &UserContext{
			UserID:     user.ID,
			Username:   user.Username,
			UserLevel:  user.UserLevel,
			IsActive:   user.IsActive,
			IsApproved: user.IsApproved,
			Claims:     claims,
		}

		// Store user context in gin context
		c.Set(userContextKey, userCtx)
		c.Set(userIDKey, user.ID)
		c.Set(userLevelKey, user.UserLevel)

		c.Next()
	}
}

func sessionErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid_token"
	case errors.Is(err, services.ErrTokenRevoked):
		return http.StatusUnauthorized, "token_revoked"
	case errors.Is(err, services.ErrAdminPendingApproval):
		return http.StatusForbidden, "pending_approval"
	case errors.Is(err, services.ErrAccountDeactivated):
		return http.StatusForbidden, "account_deactivated"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// RequireLevels admits only callers whose level is one of levels
func RequireLevels(levels ...models.UserLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx := GetUserContext(c)
		if userCtx == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "authentication_required",
				"message": "User must be authenticated",
				"status":  http.StatusUnauthorized,
			})
			c.Abort()
			return
		}

		if !userCtx.UserLevel.IsOneOf(levels...) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "insufficient_level",
				"message": "Access denied",
				"status":  http.StatusForbidden,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminRequiredMiddleware ensures only admin users can access the endpoint
func AdminRequiredMiddleware() gin.HandlerFunc {
	return RequireLevels(models.UserLevelAdmin)
}

// GetUserContext retrieves user context from gin context
func GetUserContext(c *gin.Context) *UserContext {
	if userCtx, exists := c.Get(userContextKey); exists {
		if user, ok := userCtx.(*UserContext); ok {
			return user
		}
	}
	return nil
}

// GetUserID retrieves user ID from gin context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get(userIDKey); exists {
		if id, ok := userID.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}
