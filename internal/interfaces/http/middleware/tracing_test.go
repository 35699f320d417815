package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

const (
	branchUUID = "550e8400-e29b-41d4-a716-446655440000"
	actorUUID  = "550e8400-e29b-41d4-a716-446655440001"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	return sr
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func tracedRouter(handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(TracingWithConfig(TracingConfig{ServiceName: "beanpos-test", Enabled: true}))
	router.Use(SpanAttributes())
	router.Use(SpanErrorMarker())
	router.GET("/inventory/branches/:branchID/low-stock", handler)
	return router
}

func TestTracingWithConfig(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		sr := recordSpans(t)

		router := gin.New()
		router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
		router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := get(router, "/stock", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, sr.Ended())
	})

	t.Run("records a span per request with ledger attributes", func(t *testing.T) {
		sr := recordSpans(t)
		router := tracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

		get(router, "/inventory/branches/"+branchUUID+"/low-stock", map[string]string{
			"X-Branch-ID": branchUUID,
			"X-Actor-ID":  actorUUID,
		})

		spans := sr.Ended()
		require.Len(t, spans, 1)

		attrs := spanAttributes(spans[0])
		assert.Equal(t, branchUUID, attrs["branch_id"].AsString())
		assert.Equal(t, actorUUID, attrs["actor_id"].AsString())
		assert.NotEmpty(t, attrs["request_id"].AsString())
	})

	t.Run("non-uuid branch and actor headers are dropped", func(t *testing.T) {
		sr := recordSpans(t)
		router := tracedRouter(func(c *gin.Context) { c.Status(http.StatusOK) })

		get(router, "/inventory/branches/"+branchUUID+"/low-stock", map[string]string{
			"X-Branch-ID": "drop table spans",
			"X-Actor-ID":  "also-not-a-uuid",
		})

		spans := sr.Ended()
		require.Len(t, spans, 1)

		attrs := spanAttributes(spans[0])
		_, hasBranch := attrs["branch_id"]
		_, hasActor := attrs["actor_id"]
		assert.False(t, hasBranch)
		assert.False(t, hasActor)
	})

	t.Run("request id from client header is capped", func(t *testing.T) {
		sr := recordSpans(t)

		router := gin.New()
		// no RequestID middleware, so the raw header is used
		router.Use(TracingWithConfig(TracingConfig{ServiceName: "beanpos-test", Enabled: true}))
		router.Use(SpanAttributes())
		router.GET("/stock", func(c *gin.Context) { c.Status(http.StatusOK) })

		long := make([]byte, 500)
		for i := range long {
			long[i] = 'a'
		}
		get(router, "/stock", map[string]string{"X-Request-ID": string(long)})

		spans := sr.Ended()
		require.Len(t, spans, 1)
		assert.Len(t, spanAttributes(spans[0])["request_id"].AsString(), maxRequestIDLength)
	})
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		code    codes.Code
		message string
	}{
		{"2xx leaves status unset", http.StatusOK, codes.Unset, ""},
		{"404 marks not found", http.StatusNotFound, codes.Error, "Not Found"},
		{"409 marks conflict", http.StatusConflict, codes.Error, "Conflict"},
		{"422 marks client error", http.StatusUnprocessableEntity, codes.Error, "Client Error"},
		{"500 marks server error", http.StatusInternalServerError, codes.Error, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := recordSpans(t)
			router := tracedRouter(func(c *gin.Context) { c.Status(tt.status) })

			get(router, "/inventory/branches/"+branchUUID+"/low-stock", nil)

			spans := sr.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.code, spans[0].Status().Code)
			assert.Equal(t, tt.message, spans[0].Status().Description)
		})
	}
}
