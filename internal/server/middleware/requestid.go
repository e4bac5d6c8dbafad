package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tkubica12/scalable-ai-chat/internal/pkg/id"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns a request id (reusing an inbound X-Request-Id header
// if the caller already supplied one), stashes it on the gin context for
// Logger to pick up, and echoes it back on the response. Not present in
// the teacher despite being referenced by its server setup; authored
// fresh in generic gin-middleware idiom.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = id.New()
		}
		c.Set("request_id", reqID)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}
