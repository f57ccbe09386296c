package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"transitly/pkg/logger"
)

// ConsumerConfig contains configuration for the notification consumer
type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	OffsetOldest     bool
}

// DefaultConsumerConfig returns a consumer configuration subscribed to
// the booking event topics.
func DefaultConsumerConfig(brokers []string, topicPrefix string) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers: brokers,
		GroupID: "transitly-notification-workers",
		Topics: []string{
			topicPrefix + ".seat.booked",
			topicPrefix + ".seat.released",
		},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		OffsetOldest:     false,
	}
}

// Consumer turns broadcast booking events into per-user notifications.
// It runs alongside the API server; if Kafka is disabled the consumer
// is simply never started.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	service       Service
	logger        *logger.Logger
	cancel        context.CancelFunc
}

// NewConsumer creates a Kafka consumer group for notification fan-out
func NewConsumer(config *ConsumerConfig, service Service) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		config:        config,
		service:       service,
		logger:        logger.GetDefault(),
	}, nil
}

// Start launches the consume loop until the context is cancelled
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.logger.Error("Notification consumer error", "error", err.Error())
		}
	}()

	go func() {
		handler := &eventHandler{service: c.service, logger: c.logger}
		for {
			if err := c.consumerGroup.Consume(ctx, c.config.Topics, handler); err != nil {
				c.logger.Error("Notification consume failed", "error", err.Error())
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	c.logger.Info("Notification consumer started", "topics", fmt.Sprintf("%v", c.config.Topics))
}

// Stop shuts the consumer group down
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return c.consumerGroup.Close()
}

type eventHandler struct {
	service Service
	logger  *logger.Logger
}

func (h *eventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *eventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *eventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.handleMessage(session.Context(), message)
		session.MarkMessage(message, "")
	}
	return nil
}

type bookingEvent struct {
	PassengerID uuid.UUID `json:"passenger_id"`
	SessionID   uuid.UUID `json:"session_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	SeatsCount  int       `json:"seats_count"`
	Reason      string    `json:"reason"`
}

func (h *eventHandler) handleMessage(ctx context.Context, message *sarama.ConsumerMessage) {
	var event bookingEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		h.logger.Error("Dropping malformed event", "topic", message.Topic, "error", err.Error())
		return
	}
	if event.PassengerID == uuid.Nil {
		return
	}

	switch {
	case strings.HasSuffix(message.Topic, ".seat.booked"):
		h.service.Notify(ctx, event.PassengerID, TypeBookingConfirmed,
			"Booking confirmed",
			fmt.Sprintf("Your %d seat(s) are confirmed.", event.SeatsCount))
	case strings.HasSuffix(message.Topic, ".seat.released") && event.Reason == "expired":
		h.service.Notify(ctx, event.PassengerID, TypeHoldExpired,
			"Seat hold expired",
			fmt.Sprintf("Your hold on %d seat(s) expired and was released.", event.SeatsCount))
	case strings.HasSuffix(message.Topic, ".seat.released") && event.Reason == "cancelled":
		h.service.Notify(ctx, event.PassengerID, TypeBookingCancelled,
			"Booking cancelled",
			fmt.Sprintf("Your booking for %d seat(s) was cancelled and refunded.", event.SeatsCount))
	}
}
