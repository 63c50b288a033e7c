package testutil

import (
	"net/http"
	"time"

	"members/pkg/requestcontext"
)

// WithCorrelationID puts a correlation id into the request context, as the
// correlation middleware does for a request carrying X-Correlation-Id.
func WithCorrelationID(req *http.Request, correlationID string) *http.Request {
	return req.WithContext(requestcontext.WithCorrelationID(req.Context(), correlationID))
}

// WithRequestTime pins the request-scoped clock.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
