package logger

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey      contextKey = "logger"
	operationIDKey contextKey = "operation_id"
	operationKey   contextKey = "operation"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// StartOperation tags the context with a unit-of-work name and a fresh
// operation ID. Every SQL statement and lifecycle event logged through the
// context carries both.
func StartOperation(ctx context.Context, logger *zap.Logger, name string) (context.Context, *zap.Logger) {
	id := uuid.NewString()
	ctx = context.WithValue(ctx, operationIDKey, id)
	ctx = context.WithValue(ctx, operationKey, name)
	enriched := logger.With(zap.String("operation", name), zap.String("operation_id", id))
	return WithContext(ctx, enriched), enriched
}

// GetOperationID retrieves the operation ID from context
func GetOperationID(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOperation retrieves the operation name from context
func GetOperation(ctx context.Context) string {
	if name, ok := ctx.Value(operationKey).(string); ok {
		return name
	}
	return ""
}

// GetTraceID extracts the trace ID from the context's span.
// Returns an empty string if no valid span exists.
func GetTraceID(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}

func traceFields(ctx context.Context) []zap.Field {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	}
}

// L returns the context's logger enriched with trace correlation fields.
// Operation fields are already on the logger when StartOperation was used.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx).With(traceFields(ctx)...)
}
