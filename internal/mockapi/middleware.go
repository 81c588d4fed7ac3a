package mockapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hpn/hpn-g-chat/internal/adapter"
	"github.com/hpn/hpn-g-chat/internal/ui"
)

// contextKeyAPIKey is where AuthMiddleware stores the caller's key.
const contextKeyAPIKey = "api_key_used"

// LoggingMiddleware logs one line per request. When console is set, the
// request is also rendered with ui.PrintServed.
func LoggingMiddleware(logger *slog.Logger, console bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		key := c.GetString(contextKeyAPIKey)

		logger.Info("request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
			slog.String("key_used", maskKey(key)),
		)

		if console {
			ui.PrintServed(c.Request.Method, path, c.Writer.Status(), latency, key)
		}
	}
}

// RecoveryMiddleware returns a middleware that recovers from panics.
// It logs the error and returns a 500 response in OpenAI-compatible format.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError,
					adapter.NewErrorResponse("server_error", "Internal server error"))
			}
		}()

		c.Next()
	}
}

// AuthMiddleware rejects requests without a bearer token and stores the
// token for the handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		key, found := strings.CutPrefix(auth, "Bearer ")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, adapter.NewErrorResponse(
				"invalid_request_error",
				"You didn't provide an API key. You need to provide your API key in an Authorization header using Bearer auth.",
			))
			return
		}

		c.Set(contextKeyAPIKey, key)
		c.Next()
	}
}

// maskKey returns a masked version of the API key for logging.
// Shows first 8 and last 4 characters.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
