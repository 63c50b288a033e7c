// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; the member service reads them without importing net/http.
//
//	ctx = requestcontext.WithCorrelationID(ctx, r.Header.Get("X-Correlation-Id"))
//	correlationID := requestcontext.CorrelationID(ctx)
package requestcontext

import (
	"context"
	"time"
)

type (
	correlationIDKey struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// CorrelationID retrieves the caller-supplied trace token, or "" when absent.
func CorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCorrelationID injects a correlation id. Empty values are ignored.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// RequestID retrieves the per-request id assigned by the router middleware.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a request id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
