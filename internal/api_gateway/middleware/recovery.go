package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery converts a handler panic into the standard 500 envelope. The
// stack and caller stay in the log, never in the response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			attrs := []any{
				"panic", r,
				"stack", string(debug.Stack()),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"correlation_id", GetCorrelationID(c),
			}
			if userID, ok := GetUserID(c); ok {
				attrs = append(attrs, "user_id", userID.String())
			}
			logger.Error("Handler panicked", attrs...)

			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
		}()

		c.Next()
	}
}

// abortWithError writes the error envelope from inside the middleware chain
func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{"error": gin.H{"code": code, "message": message}}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
