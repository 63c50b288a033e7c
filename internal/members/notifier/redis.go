package notifier

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

// RedisConfig configures the Redis Streams publisher.
type RedisConfig struct {
	Stream       string
	MaxLen       int64
	Buffer       int
	WriteTimeout time.Duration
}

// Redis appends change events to a Redis stream from a single background
// worker. Events that do not fit in the buffer are dropped and counted.
type Redis struct {
	client  *redis.Client
	cfg     RedisConfig
	logger  *slog.Logger
	metrics *Metrics

	mu     sync.RWMutex
	closed bool
	events chan models.ChangeEvent
	done   chan struct{}
}

// NewRedis starts the publishing worker on an already connected client.
func NewRedis(client *redis.Client, cfg RedisConfig, opts ...Option) *Redis {
	if cfg.Stream == "" {
		cfg.Stream = "members"
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	o := buildOptions(opts)
	r := &Redis{
		client:  client,
		cfg:     cfg,
		logger:  o.logger,
		metrics: o.metrics,
		events:  make(chan models.ChangeEvent, cfg.Buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Redis) Publish(ctx context.Context, event models.ChangeEvent) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.metrics.incFailed(backendRedis, stageEnqueue)
		return sentinel.ErrClosed
	}
	select {
	case r.events <- event:
		return nil
	default:
		r.metrics.incFailed(backendRedis, stageEnqueue)
		logFailure(ctx, r.logger, backendRedis, stageEnqueue, event, ErrBufferFull)
		return ErrBufferFull
	}
}

func (r *Redis) run() {
	defer close(r.done)
	for event := range r.events {
		r.deliver(event)
	}
}

func (r *Redis) deliver(event models.ChangeEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.WriteTimeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: r.cfg.Stream,
		Values: map[string]any{
			"key":           event.Kind.Key(),
			"entityId":      strconv.FormatInt(int64(event.EntityID), 10),
			"correlationId": event.CorrelationID,
		},
	}
	if r.cfg.MaxLen > 0 {
		args.MaxLen = r.cfg.MaxLen
		args.Approx = true
	}
	if err := r.client.XAdd(ctx, args).Err(); err != nil {
		r.metrics.incFailed(backendRedis, stageDeliver)
		logFailure(ctx, r.logger, backendRedis, stageDeliver, event, err)
		return
	}
	r.metrics.incPublished(backendRedis)
}

// Close stops accepting events and waits for the buffer to drain or ctx to expire.
// The Redis client itself is owned by the caller.
func (r *Redis) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.events)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
