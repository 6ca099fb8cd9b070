package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// Middleware assigns a request id, stores it on the request context and logs
// one line per request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		ctx := context.WithValue(c.Request.Context(), RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"dur", time.Since(start).String(),
		}
		if uid, ok := c.Get(string(UserIDKey)); ok {
			attrs = append(attrs, "user_id", uid)
		}
		l := WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			l.Error("request", attrs...)
			return
		}
		l.Info("request", attrs...)
	}
}
