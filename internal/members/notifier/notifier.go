// Package notifier publishes member change events to the outbound channel.
//
// Publishing is best effort: Publish only enqueues, delivery happens in the
// background, and delivery failures are logged and counted but never reported
// back to the caller. Each implementation is a single handle opened at startup,
// safe for concurrent use, and closed once at shutdown.
package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"members/internal/members/models"
)

// ErrBufferFull is returned when a publisher cannot accept more events.
var ErrBufferFull = errors.New("notification buffer full")

// Publisher is the process-wide publishing handle.
type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
	Close(ctx context.Context) error
}

const (
	backendKafka = "kafka"
	backendRedis = "redis"
	backendLog   = "log"

	stageEncode  = "encode"
	stageEnqueue = "enqueue"
	stageDeliver = "deliver"
)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures a publisher.
type Option func(*options)

// WithLogger sets the logger used for delivery failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics enables publish/failure counters.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

func logFailure(ctx context.Context, logger *slog.Logger, backend, stage string, event models.ChangeEvent, err error) {
	logger.ErrorContext(ctx, "member change notification failed",
		"backend", backend,
		"stage", stage,
		"operation", event.Kind.Key(),
		"member_id", event.EntityID,
		"correlation_id", event.CorrelationID,
		"error", err,
	)
}
