package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/storyguard/config"
)

type ConsumerFunc func(context.Context, *kafka.Consumer)

var consumerRegistry = make(map[string]ConsumerFunc)

func RegisterConsumer(topic string, consumerFunc ConsumerFunc) {
	consumerRegistry[topic] = consumerFunc
}

// StartConsumer runs the consumer registered for the request topic and
// blocks until it returns.
func StartConsumer(ctx context.Context, cfg config.KafkaConfig) error {
	consumerFunc, exists := consumerRegistry[cfg.RequestTopic]
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", cfg.RequestTopic)
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.RequestTopic))
	consumerFunc(ctx, consumer)

	return nil
}
