package api

import (
	"time"

	"go-locator/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const TraceHeader = "X-Trace-ID"

// TraceMiddleware tags each request with a trace id, taken from the
// X-Trace-ID header or generated, and a logger carrying it.
func TraceMiddleware(base logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(TraceHeader, traceID)

		ctx := logger.ContextWithTraceID(c.Request.Context(), traceID)
		ctx = logger.ContextWithLogger(ctx, base.WithFields(logger.Fields{"trace_id": traceID}))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.FromContext(c.Request.Context()).Info("HTTP request", logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}
