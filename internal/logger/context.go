package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const correlationIDContextKey contextKey = "correlationID"

// WithCorrelationID adds correlation ID to context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDContextKey, correlationID)
}

// CorrelationIDFromContext retrieves correlation ID from context
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

// FromContext tags base with the request's correlation ID, if ctx has one
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if id := CorrelationIDFromContext(ctx); id != "" {
		return base.With(zap.String("correlation_id", id))
	}
	return base
}
