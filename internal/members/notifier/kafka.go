package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"members/internal/members/models"
	"members/pkg/platform/sentinel"
)

const defaultMaxBufferedRecords = 10000

// KafkaConfig configures the Kafka producer.
type KafkaConfig struct {
	Brokers            []string
	Topic              string
	ClientID           string
	ProduceRetries     int
	DeliveryTimeout    time.Duration
	MaxBufferedRecords int
	CreateTopic        bool
	Partitions         int32
	ReplicationFactor  int16
}

// Kafka produces change events asynchronously with franz-go. Retries are the
// client's own RecordRetries policy; nothing above this type retries.
type Kafka struct {
	client      *kgo.Client
	topic       string
	maxBuffered int64
	logger      *slog.Logger
	metrics     *Metrics
	closed      atomic.Bool
}

// NewKafka builds the producer and, when configured, makes sure the topic exists.
func NewKafka(ctx context.Context, cfg KafkaConfig, opts ...Option) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	o := buildOptions(opts)
	if cfg.MaxBufferedRecords <= 0 {
		cfg.MaxBufferedRecords = defaultMaxBufferedRecords
	}

	kopts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(cfg.ProduceRetries),
		kgo.MaxBufferedRecords(cfg.MaxBufferedRecords),
	}
	if cfg.ClientID != "" {
		kopts = append(kopts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.DeliveryTimeout > 0 {
		kopts = append(kopts, kgo.RecordDeliveryTimeout(cfg.DeliveryTimeout))
	}

	client, err := kgo.NewClient(kopts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if cfg.CreateTopic {
		if err := ensureTopic(ctx, client, cfg); err != nil {
			client.Close()
			return nil, err
		}
	}

	return &Kafka{
		client:      client,
		topic:       cfg.Topic,
		maxBuffered: int64(cfg.MaxBufferedRecords),
		logger:      o.logger,
		metrics:     o.metrics,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, cfg KafkaConfig) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	replication := cfg.ReplicationFactor
	if replication <= 0 {
		replication = 1
	}
	resp, err := kadm.NewClient(client).CreateTopic(ctx, partitions, replication, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", cfg.Topic, resp.Err)
	}
	return nil
}

// Publish enqueues the event and returns without waiting on the broker. The
// produce outlives the caller's request, so cancellation of ctx does not abort
// delivery. A full client buffer fails fast with ErrBufferFull.
func (k *Kafka) Publish(ctx context.Context, event models.ChangeEvent) error {
	if k.closed.Load() {
		k.metrics.incFailed(backendKafka, stageEnqueue)
		return sentinel.ErrClosed
	}
	key, value, err := Encode(event)
	if err != nil {
		k.metrics.incFailed(backendKafka, stageEncode)
		return err
	}
	if k.client.BufferedProduceRecords() >= k.maxBuffered {
		k.metrics.incFailed(backendKafka, stageEnqueue)
		return ErrBufferFull
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   key,
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: CorrelationHeader, Value: []byte(event.CorrelationID)},
		},
	}
	produceCtx := context.WithoutCancel(ctx)
	k.client.TryProduce(produceCtx, record, func(_ *kgo.Record, err error) {
		switch {
		case errors.Is(err, kgo.ErrMaxBuffered):
			// Lost the race for the last buffer slot.
			k.metrics.incFailed(backendKafka, stageEnqueue)
			logFailure(produceCtx, k.logger, backendKafka, stageEnqueue, event, err)
		case err != nil:
			k.metrics.incFailed(backendKafka, stageDeliver)
			logFailure(produceCtx, k.logger, backendKafka, stageDeliver, event, err)
		default:
			k.metrics.incPublished(backendKafka)
		}
	})
	return nil
}

// Ping checks broker connectivity.
func (k *Kafka) Ping(ctx context.Context) error {
	return k.client.Ping(ctx)
}

// Close flushes buffered records until ctx expires, then closes the client.
func (k *Kafka) Close(ctx context.Context) error {
	if !k.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := k.client.Flush(ctx)
	k.client.Close()
	if err != nil {
		return fmt.Errorf("flush kafka producer: %w", err)
	}
	return nil
}
