package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"transitly/pkg/logger"
)

// Event topics mirror the websocket channel names clients subscribe to.
const (
	TopicSessionUpdated = "session.updated"
	TopicSeatBooked     = "seat.booked"
	TopicSeatReleased   = "seat.released"
	TopicSessionFull    = "session.full"
	TopicPaymentSuccess = "payment.success"
)

// Broadcaster is the narrow emit interface the core services depend on.
// Delivery is at-most-once and must never block or fail a booking flow.
type Broadcaster interface {
	Publish(ctx context.Context, topic, key string, payload interface{})
	Close() error
}

// KafkaConfig contains configuration for the Kafka broadcaster
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	RetryMax    int
	TimeoutMs   int
}

// DefaultKafkaConfig returns a default broadcaster configuration
func DefaultKafkaConfig(brokers []string, topicPrefix string) *KafkaConfig {
	return &KafkaConfig{
		Brokers:     brokers,
		TopicPrefix: topicPrefix,
		RetryMax:    3,
		TimeoutMs:   10000, // 10 seconds
	}
}

// KafkaBroadcaster publishes seat inventory events to Kafka, one topic
// per channel, keyed by session so per-session ordering is preserved.
type KafkaBroadcaster struct {
	producer sarama.SyncProducer
	config   *KafkaConfig
	logger   *logger.Logger
}

// NewKafkaBroadcaster creates a broadcaster backed by a sarama sync producer
func NewKafkaBroadcaster(config *KafkaConfig) (*KafkaBroadcaster, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond

	// Hash partitioner keeps all events for one session on one partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaBroadcaster{
		producer: producer,
		config:   config,
		logger:   logger.GetDefault(),
	}, nil
}

// Publish sends one event. Failures are logged and swallowed: state
// changes have already committed and must not be rolled back by a
// broken broker.
func (b *KafkaBroadcaster) Publish(ctx context.Context, topic, key string, payload interface{}) {
	messageBytes, err := json.Marshal(payload)
	if err != nil {
		b.logger.ErrorWithContext(ctx, "Failed to marshal broadcast payload", err, map[string]interface{}{
			"topic": topic,
			"key":   key,
		})
		return
	}

	message := &sarama.ProducerMessage{
		Topic: b.topicName(topic),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("channel"), Value: []byte(topic)},
			{Key: []byte("producer"), Value: []byte("transitly-backend")},
			{Key: []byte("published_at"), Value: []byte(time.Now().Format(time.RFC3339))},
		},
	}

	if _, _, err := b.producer.SendMessage(message); err != nil {
		b.logger.ErrorWithContext(ctx, "Failed to publish event", err, map[string]interface{}{
			"topic": topic,
			"key":   key,
		})
	}
}

// Close shuts down the underlying producer
func (b *KafkaBroadcaster) Close() error {
	return b.producer.Close()
}

func (b *KafkaBroadcaster) topicName(topic string) string {
	return b.config.TopicPrefix + "." + topic
}

// NoopBroadcaster discards all events. Used when Kafka is not
// configured and in tests.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Publish(ctx context.Context, topic, key string, payload interface{}) {}

func (NoopBroadcaster) Close() error { return nil }
