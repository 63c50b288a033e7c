package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"members/pkg/requestcontext"
)

// correlationID picks the token carried by the outbound event: the caller's
// header value, else the active trace id, else a fresh uuid.
func (s *Service) correlationID(ctx context.Context) string {
	if id := requestcontext.CorrelationID(ctx); id != "" {
		return id
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}
