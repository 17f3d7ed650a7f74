package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/archivus/masterdocs/internal/domain/services"
	"github.com/archivus/masterdocs/internal/infrastructure/cache"
	"github.com/archivus/masterdocs/internal/infrastructure/database/models"
	"github.com/archivus/masterdocs/pkg/logger"
	"github.com/gin-gonic/gin"
)

const contentSecurityPolicy = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline';"

// SecurityHeaders sets the headers every response carries
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// NoStoreForNonAdmins keeps responses to anyone below admin out of browser
// and proxy caches. It must run after AuthMiddleware.
func NoStoreForNonAdmins() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userCtx := GetUserContext(c); userCtx != nil && userCtx.UserLevel != models.UserLevelAdmin {
			c.Header("Cache-Control", "no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}
		c.Next()
	}
}

// RequestLogging logs HTTP requests
func RequestLogging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Log request details
		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", latency.String(),
			"client_ip", c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			attrs = append(attrs, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("HTTP Request", attrs...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("HTTP Request", attrs...)
		default:
			log.Info("HTTP Request", attrs...)
		}
	}
}

// LoginRateLimit caps login attempts per client IP within window. A nil
// cache or a cache failure lets the request through.
func LoginRateLimit(store services.CacheService, limit int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf(services.LoginRateLimitKeyPattern, c.ClientIP())
		allowed, err := cache.RateLimit(c.Request.Context(), store, key, int64(limit), window)
		if err != nil {
			log.Warn("Rate limit check failed", "error", err, "client_ip", c.ClientIP())
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many login attempts, try again later",
				"status":  http.StatusTooManyRequests,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
