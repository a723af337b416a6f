package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicops/frontdesk-api/pkg/logger"
)

// RequestLogger logs every request with latency and status.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(RequestIDKey),
		}

		if len(c.Errors) > 0 {
			log.Error(c.Errors.Last().Err, "request failed", fields)
			return
		}
		log.Info("request completed", fields)
	}
}
