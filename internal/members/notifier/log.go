package notifier

import (
	"context"
	"log/slog"
	"sync/atomic"

	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

// Log writes change events to the logger instead of a broker. Used when no
// channel is configured.
type Log struct {
	logger  *slog.Logger
	metrics *Metrics
	closed  atomic.Bool
}

func NewLog(opts ...Option) *Log {
	o := buildOptions(opts)
	return &Log{logger: o.logger, metrics: o.metrics}
}

func (l *Log) Publish(ctx context.Context, event models.ChangeEvent) error {
	if l.closed.Load() {
		l.metrics.incFailed(backendLog, stageEnqueue)
		return sentinel.ErrClosed
	}
	l.logger.InfoContext(ctx, "member change",
		"operation", event.Kind.Key(),
		"member_id", event.EntityID,
		"correlation_id", event.CorrelationID,
	)
	l.metrics.incPublished(backendLog)
	return nil
}

func (l *Log) Close(context.Context) error {
	l.closed.Store(true)
	return nil
}
