package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

// LogDetailsKey carries per-request details for the logger.
const LogDetailsKey contextKey = "logDetails"

type RequestDetails struct {
	RequestID string
}

// AttachRequestDetails stamps every request with a request id and stores it on
// the request context so downstream logs can correlate.
func AttachRequestDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		details := RequestDetails{RequestID: requestID}
		ctx := context.WithValue(c.Request.Context(), LogDetailsKey, details)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Next()
	}
}
