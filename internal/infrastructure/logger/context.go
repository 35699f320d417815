package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	branchIDKey  contextKey = "branch_id"
	actorIDKey   contextKey = "actor_id"
)

// WithContext attaches the logger to ctx so repository and service code
// can recover it without threading a logger parameter through every call.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the attached logger, or a nop logger when none is set.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID stores the request ID in ctx and returns a logger that
// tags every entry with it.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, l), l
}

// WithBranchID stores the branch ID in ctx and returns a logger
// scoped to that branch.
func WithBranchID(ctx context.Context, logger *zap.Logger, branchID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, branchIDKey, branchID)
	l := logger.With(zap.String("branch_id", branchID))
	return WithContext(ctx, l), l
}

// WithActorID stores the acting staff member's ID in ctx and returns a
// logger that tags entries with it.
func WithActorID(ctx context.Context, logger *zap.Logger, actorID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, actorIDKey, actorID)
	l := logger.With(zap.String("actor_id", actorID))
	return WithContext(ctx, l), l
}

// GetRequestID returns the request ID stored in ctx, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// GetBranchID returns the branch ID stored in ctx, or "".
func GetBranchID(ctx context.Context) string {
	v, _ := ctx.Value(branchIDKey).(string)
	return v
}

// GetActorID returns the acting staff member's ID stored in ctx, or "".
func GetActorID(ctx context.Context) string {
	v, _ := ctx.Value(actorIDKey).(string)
	return v
}

// WithTraceContext tags the logger with the active span's trace_id and
// span_id so log lines correlate with traces. Without a valid span the
// logger is returned unchanged.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
