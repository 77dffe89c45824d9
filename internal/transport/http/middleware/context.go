package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceIDHeader carries the trace identifier between services.
	TraceIDHeader = "X-Trace-ID"
	// TraceIDKey is the gin context key for the trace identifier.
	TraceIDKey = "trace_id"
	// EmailKey is the gin context key for the authenticated email.
	EmailKey = "auth_email"
	// TokenKey is the gin context key for the raw bearer token.
	TokenKey = "auth_token"
)

// EnrichContext propagates an incoming trace identifier or mints a new one.
func EnrichContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceID retrieves the trace identifier from the gin context.
func GetTraceID(c *gin.Context) string {
	if value, exists := c.Get(TraceIDKey); exists {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
