package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/creatorly/styletrain/internal/logger"
)

// LoggerMiddleware returns a Gin middleware that injects a request-scoped
// logger and logs request completion with timing fields.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		requestID := uuid.New().String()

		ctx := c.Request.Context()
		ctx = logger.WithFields(ctx, logger.Fields{
			logger.FieldRequestID: requestID,
			logger.FieldComponent: "api",
		})
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		logger.FromContext(ctx).WithFields(logger.Fields{
			"status":      c.Writer.Status(),
			"duration_ms": latency.Milliseconds(),
			"size":        c.Writer.Size(),
		}).Infof("%s %s completed", c.Request.Method, path)
	}
}
