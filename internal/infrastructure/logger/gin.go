package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware logs every HTTP request and installs a request-scoped
// logger, tagged with the request ID plus the branch and actor headers
// when the client sends them. The enriched context is pushed back onto
// the request so lower layers (gorm tracing included) see the same IDs.
func GinMiddleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		ctx := c.Request.Context()
		l := base
		if requestID := c.GetString("request_id"); requestID != "" {
			ctx, l = WithRequestID(ctx, l, requestID)
		}
		if branchID := c.GetHeader("X-Branch-ID"); branchID != "" {
			ctx, l = WithBranchID(ctx, l, branchID)
		}
		if actorID := c.GetHeader("X-Actor-ID"); actorID != "" {
			ctx, l = WithActorID(ctx, l, actorID)
		}
		l = l.With(
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)

		c.Set("logger", l)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			l.Error("HTTP Request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("HTTP Request", fields...)
		default:
			l.Info("HTTP Request", fields...)
		}
	}
}

// Recovery converts a handler panic into a 500 and logs the stack.
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				l := base
				if v, ok := c.Get("logger"); ok {
					if rl, ok := v.(*zap.Logger); ok {
						l = rl
					}
				}
				l.Error("Panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger installed by
// GinMiddleware, or a nop logger outside of one.
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
