package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"members/internal/members/codec"
	"members/internal/members/graph"
	"members/internal/members/handler"
	membermetrics "members/internal/members/metrics"
	"members/internal/members/notifier"
	"members/internal/members/service"
	"members/internal/members/store"
	"members/internal/platform/config"
	"members/internal/platform/database"
	"members/internal/platform/health"
	"members/internal/platform/httpserver"
	"members/internal/platform/logger"
	platformmetrics "members/internal/platform/metrics"
	platformredis "members/internal/platform/redis"
	httptransport "members/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal/members packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("members service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	checker := health.New()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(db, log)
	checker.AddCheck("database", db.PingContext)

	publisher, err := newPublisher(ctx, cfg, log, notifier.NewMetrics(reg), checker)
	if err != nil {
		return err
	}

	repo := store.NewPostgres(db, codec.New(cfg.RoleDecodePolicy))
	svc, err := service.New(repo, publisher,
		service.WithLogger(log),
		service.WithMetrics(membermetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	graphHandler, err := graph.New(svc, log)
	if err != nil {
		return err
	}
	router := httptransport.NewRouter(httptransport.Dependencies{
		Logger:   log,
		Members:  handler.New(svc, log),
		Graph:    graphHandler,
		Health:   checker,
		Metrics:  platformmetrics.New(reg),
		Gatherer: reg,
	})

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting members service",
		"addr", cfg.Addr,
		"notifier", cfg.NotifierBackend,
		"role_decode_policy", cfg.RoleDecodePolicy.String(),
	)
	// Probes are served while the schema migrates; /health/startup turns 200 after.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.ShutdownTimeout)
	})
	g.Go(func() error {
		err := checker.Startup(gctx, func(ctx context.Context) error {
			return store.Migrate(ctx, db)
		})
		if err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
		log.Info("schema migration completed")
		return nil
	})
	serveErr := g.Wait()

	// The server has drained; flush the notifier before the database closes.
	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := publisher.Close(closeCtx); err != nil {
		log.Error("failed to close notifier", "error", err)
	}
	log.Info("members service stopped")
	return serveErr
}

func newPublisher(ctx context.Context, cfg config.Config, log *slog.Logger, m *notifier.Metrics, checker *health.Checker) (notifier.Publisher, error) {
	opts := []notifier.Option{notifier.WithLogger(log), notifier.WithMetrics(m)}

	switch cfg.NotifierBackend {
	case config.BackendKafka:
		k, err := notifier.NewKafka(ctx, notifier.KafkaConfig{
			Brokers:            cfg.Kafka.Brokers,
			Topic:              cfg.Kafka.Topic,
			ClientID:           cfg.Kafka.ClientID,
			ProduceRetries:     cfg.Kafka.ProduceRetries,
			DeliveryTimeout:    cfg.Kafka.DeliveryTimeout,
			MaxBufferedRecords: cfg.Kafka.MaxBufferedRecords,
			CreateTopic:        cfg.Kafka.CreateTopic,
			Partitions:         int32(cfg.Kafka.Partitions),
			ReplicationFactor:  int16(cfg.Kafka.ReplicationFactor),
		}, opts...)
		if err != nil {
			return nil, err
		}
		checker.AddCheck("kafka", k.Ping)
		return k, nil
	case config.BackendRedis:
		client, err := platformredis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		checker.AddCheck("redis", client.Health)
		return &redisPublisher{
			Redis: notifier.NewRedis(client.Client, notifier.RedisConfig{
				Stream:       cfg.Redis.Stream,
				MaxLen:       int64(cfg.Redis.StreamMaxLen),
				Buffer:       cfg.Redis.Buffer,
				WriteTimeout: cfg.Redis.WriteTimeout,
			}, opts...),
			client: client,
		}, nil
	default:
		return notifier.NewLog(opts...), nil
	}
}

// redisPublisher closes the Redis connection once the stream worker has drained.
type redisPublisher struct {
	*notifier.Redis
	client *platformredis.Client
}

func (p *redisPublisher) Close(ctx context.Context) error {
	err := p.Redis.Close(ctx)
	if cerr := p.client.Close(); err == nil {
		err = cerr
	}
	return err
}

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", "error", err)
	}
}
