package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"zamora/internal/util"
)

type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}

	return &Producer{writer: writer}
}

// PublishEvent publishes an event to Kafka. Messages sharing a key land on the
// same partition and keep their order.
func (p *Producer) PublishEvent(ctx context.Context, key string, event any) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: eventBytes,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	util.GetLogger().Debug("published event", zap.String("key", key), zap.String("type", fmt.Sprintf("%T", event)))
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Consumer represents a Kafka consumer
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &Consumer{reader: reader}
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}

// MessageHandler is a function type for handling messages
type MessageHandler func(ctx context.Context, msg kafka.Message) error

const (
	maxHandleAttempts = 5
	retryBackoff      = 500 * time.Millisecond
)

// StartConsuming fetches messages until ctx is cancelled. A failing message is
// retried with backoff before the consumer moves on; committing a later offset
// skips it for good, so a message that exhausts its attempts is logged and lost.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	logger := util.GetLogger().With(
		zap.String("topic", c.reader.Config().Topic),
		zap.String("group", c.reader.Config().GroupID))
	logger.Info("starting kafka consumer")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("consumer context cancelled, stopping")
				return ctx.Err()
			}
			logger.Warn("error fetching message", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		if err := handleWithRetry(ctx, handler, msg, maxHandleAttempts, retryBackoff); err != nil {
			if ctx.Err() != nil {
				// uncommitted; redelivered to the next reader of the group
				return ctx.Err()
			}
			logger.Error("dropping message after retries",
				zap.Int64("offset", msg.Offset), zap.String("key", string(msg.Key)), zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Warn("error committing message", zap.Error(err))
		}
	}
}

// handleWithRetry runs handler until it succeeds, attempts run out or ctx ends.
// The wait doubles after each failure.
func handleWithRetry(ctx context.Context, handler MessageHandler, msg kafka.Message, attempts int, backoff time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		util.GetLogger().Warn("error handling message, retrying",
			zap.Int64("offset", msg.Offset), zap.Int("attempt", i+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
