package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceHeader carries the request trace id in both directions
const TraceHeader = "X-Trace-ID"

// RequestLogger logs every request with a trace id. A valid incoming
// X-Trace-ID is reused, otherwise a new one is generated.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.NewString()
		}
		c.Header(TraceHeader, traceID)
		c.Set("trace_id", traceID)

		start := time.Now()
		c.Next()

		attrs := []any{
			"trace_id", traceID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request finished", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("request finished", attrs...)
		default:
			logger.Info("request finished", attrs...)
		}
	}
}
