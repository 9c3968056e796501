package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key holding the request id.
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed back on every response.
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

// RequestIDMiddleware reuses an upstream X-Request-ID or generates one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
