package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// OffsetCommitter is satisfied by *kafka.Consumer.
type OffsetCommitter interface {
	CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error)
}

type KafkaCommitHandler struct {
	committer OffsetCommitter
	ctx       context.Context
	delay     time.Duration
}

func NewCommitHandler(ctx context.Context, committer OffsetCommitter) *KafkaCommitHandler {
	return &KafkaCommitHandler{
		committer: committer,
		ctx:       ctx,
		delay:     RETRY_DELAY,
	}
}

func (ch *KafkaCommitHandler) Commit(msg *kafka.Message) error {
	if ch.committer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-ch.ctx.Done():
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit")
			return ch.ctx.Err()
		default:
		}

		_, err := ch.committer.CommitMessage(msg)
		if err == nil {
			slog.Debug("[KafkaCommitHandler] Successfully committed offset",
				slog.String("partition", fmt.Sprintf("%d", msg.TopicPartition.Partition)),
				slog.String("offset", fmt.Sprintf("%d", msg.TopicPartition.Offset)))
			return nil
		}
		slog.Warn("[KafkaCommitHandler] Failed to commit offset, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()),
			slog.String("partition", fmt.Sprintf("%d", msg.TopicPartition.Partition)),
			slog.String("offset", fmt.Sprintf("%d", msg.TopicPartition.Offset)))

		var kafkaErr kafka.Error
		if errors.As(err, &kafkaErr) && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit")
			return err
		}

		time.Sleep(ch.delay)
	}

	return fmt.Errorf("[KafkaCommitHandler] Failed to commit message after %d retries", MAX_RETRIES)
}

// OffsetSeeker is satisfied by *kafka.Consumer.
type OffsetSeeker interface {
	Seek(partition kafka.TopicPartition, timeoutMs int) error
}

// Rewind moves the partition back to msg so the next read returns it
// again. It waits delay first so a failing handler does not spin.
func Rewind(ctx context.Context, seeker OffsetSeeker, msg *kafka.Message, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
	}

	if err := seeker.Seek(msg.TopicPartition, SEEK_TIMEOUT_MS); err != nil {
		return fmt.Errorf("[KafkaCommitHandler] Failed to seek back to offset %d: %w", msg.TopicPartition.Offset, err)
	}
	slog.Debug("[KafkaCommitHandler] Rewound partition for redelivery",
		slog.String("partition", fmt.Sprintf("%d", msg.TopicPartition.Partition)),
		slog.String("offset", fmt.Sprintf("%d", msg.TopicPartition.Offset)))
	return nil
}
