//go:build integration

package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"members/internal/members/models"
	"members/pkg/testutil/containers"
)

func TestKafka_DeliversKeyedMessage(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	t.Cleanup(broker.Terminate)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metrics := NewMetrics(prometheus.NewRegistry())
	n, err := NewKafka(ctx, KafkaConfig{
		Brokers:        []string{broker.SeedBroker},
		Topic:          "members",
		ClientID:       "members-test",
		ProduceRetries: 3,
		CreateTopic:    true,
	}, WithMetrics(metrics))
	require.NoError(t, err)

	require.NoError(t, n.Ping(ctx))
	require.NoError(t, n.Publish(ctx, models.ChangeEvent{EntityID: 11, CorrelationID: "corr-11", Kind: models.OperationCreated}))
	require.NoError(t, n.Close(ctx))
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.Published.WithLabelValues(backendKafka)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics("members"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "add_member", string(rec.Key))
	msg, err := DecodeMessage(rec.Value)
	require.NoError(t, err)
	assert.Equal(t, Message{EntityID: 11, CorrelationID: "corr-11"}, msg)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, CorrelationHeader, rec.Headers[0].Key)
	assert.Equal(t, "corr-11", string(rec.Headers[0].Value))
}

func TestKafka_EnsureTopicIsIdempotent(t *testing.T) {
	broker := containers.NewRedpandaContainer(t)
	t.Cleanup(broker.Terminate)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := KafkaConfig{Brokers: []string{broker.SeedBroker}, Topic: "members-idem", CreateTopic: true}
	first, err := NewKafka(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := NewKafka(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, second.Close(ctx))
}

func TestRedis_AppendsToStream(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	t.Cleanup(rc.Terminate)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	metrics := NewMetrics(prometheus.NewRegistry())
	n := NewRedis(rc.Client, RedisConfig{Stream: "members", MaxLen: 1000}, WithMetrics(metrics))

	require.NoError(t, n.Publish(ctx, models.ChangeEvent{EntityID: 5, CorrelationID: "corr-5", Kind: models.OperationDeleted}))
	require.NoError(t, n.Close(ctx))

	entries, err := rc.Client.XRange(ctx, "members", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "delete_member", entries[0].Values["key"])
	assert.Equal(t, "5", entries[0].Values["entityId"])
	assert.Equal(t, "corr-5", entries[0].Values["correlationId"])
	assert.Equal(t, 1.0, promtest.ToFloat64(metrics.Published.WithLabelValues(backendRedis)))
}
