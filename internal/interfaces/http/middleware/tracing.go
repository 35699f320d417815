// Package middleware provides HTTP middleware for the BeanPOS backend.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxRequestIDLength caps the request_id attribute taken from client headers.
const maxRequestIDLength = 128

// TracingConfig configures the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns the baseline tracing settings.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{ServiceName: "beanpos-backend", Enabled: true}
}

// Tracing applies the default tracing configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig opens an otelgin server span named
// "METHOD route_pattern" around each request. Mount SpanAttributes and
// SpanErrorMarker after it; they run inside the span's lifetime.
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes tags the active span with request_id plus the branch
// and actor headers. Branch and actor values must be UUIDs; anything
// else is dropped rather than injected into trace data.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := spanRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
			if branchID := uuidHeader(c, "X-Branch-ID"); branchID != "" {
				span.SetAttributes(attribute.String("branch_id", branchID))
			}
			if actorID := uuidHeader(c, "X-Actor-ID"); actorID != "" {
				span.SetAttributes(attribute.String("actor_id", actorID))
			}
		}
		c.Next()
	}
}

func spanRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	id := c.GetHeader("X-Request-ID")
	if len(id) > maxRequestIDLength {
		id = id[:maxRequestIDLength]
	}
	return id
}

func uuidHeader(c *gin.Context, name string) string {
	v := c.GetHeader(name)
	if v == "" || uuid.Validate(v) != nil {
		return ""
	}
	return v
}

// SpanErrorMarker flags the active span as errored for 4xx/5xx
// responses. Mount it after the tracing middleware.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}

		msg := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			msg = "Internal Server Error"
		case status == http.StatusNotFound:
			msg = "Not Found"
		case status == http.StatusConflict:
			msg = "Conflict"
		}
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
