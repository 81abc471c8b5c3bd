package consumers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/spacesedan/storyguard/internal/audit"
	"github.com/spacesedan/storyguard/internal/clients/kafka_client"
	"github.com/spacesedan/storyguard/internal/clients/kafka_client/utils"
	"github.com/spacesedan/storyguard/internal/metrics"
	"github.com/spacesedan/storyguard/internal/models"
)

// Publisher is satisfied by *kafka_client.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// ProcessedTracker is satisfied by *clients.ValkeyClient.
type ProcessedTracker interface {
	IsProcessed(ctx context.Context, requestID string) bool
	MarkProcessed(ctx context.Context, requestID string) error
}

// MessageSource is the part of *kafka.Consumer the request loop needs.
type MessageSource interface {
	kafka_client.MessageReader
	kafka_client.OffsetCommitter
	kafka_client.OffsetSeeker
}

type AuditRequestConsumer struct {
	runner       *audit.Runner
	publisher    Publisher
	tracker      ProcessedTracker
	metrics      *metrics.Metrics
	resultsTopic string
	rewindDelay  time.Duration
}

func NewAuditRequestConsumer(runner *audit.Runner, publisher Publisher, tracker ProcessedTracker, m *metrics.Metrics, resultsTopic string) *AuditRequestConsumer {
	if resultsTopic == "" {
		resultsTopic = kafka_client.KAFKA_TOPIC_AUDIT_RESULTS
	}
	return &AuditRequestConsumer{
		runner:       runner,
		publisher:    publisher,
		tracker:      tracker,
		metrics:      m,
		resultsTopic: resultsTopic,
		rewindDelay:  kafka_client.RETRY_DELAY,
	}
}

// Start consumes audit requests until ctx is done.
func (c *AuditRequestConsumer) Start(ctx context.Context, consumer *kafka.Consumer) {
	c.Consume(ctx, consumer)
}

// Consume reads from src until ctx is done. An offset is committed only
// after its report is published, or when the message can never be handled.
// A handler error seeks back to the message so it is read again.
func (c *AuditRequestConsumer) Consume(ctx context.Context, src MessageSource) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, src)
	committer := kafka_client.NewCommitHandler(ctx, src)

	slog.Info("[AuditRequestConsumer] Listening for audit requests...")

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[AuditRequestConsumer] Stopping consumer...")
			return
		default:
		}

		msg, err := iterator.Next()
		if err != nil {
			utils.HandleConsumerError(err)
			continue
		}

		if err := c.Handle(ctx, msg.Value); err != nil {
			utils.HandleConsumerError(err)
			if err := kafka_client.Rewind(ctx, src, msg, c.rewindDelay); err != nil {
				slog.Warn("[AuditRequestConsumer] Failed to rewind after handler error",
					slog.String("error", err.Error()))
			}
			continue
		}

		if err := committer.Commit(msg); err != nil {
			slog.Warn("[AuditRequestConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}

// Handle audits one request body. Malformed bodies and invalid threshold
// overrides are logged and dropped so they do not block the partition;
// publish failures are returned and Consume seeks back to the message.
func (c *AuditRequestConsumer) Handle(ctx context.Context, value []byte) error {
	req, err := utils.DeserializeFromJSON[models.AuditRequest](value)
	if err != nil {
		slog.Error("[AuditRequestConsumer] Dropping malformed audit request",
			slog.String("error", err.Error()))
		return nil
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	} else if c.tracker != nil && c.tracker.IsProcessed(ctx, req.RequestID) {
		slog.Info("[AuditRequestConsumer] Skipping already processed request",
			slog.String("request_id", req.RequestID))
		return nil
	}

	runner := c.runner
	if req.Threshold != nil {
		if !audit.ValidThreshold(*req.Threshold) {
			slog.Error("[AuditRequestConsumer] Dropping audit request with invalid threshold",
				slog.String("request_id", req.RequestID),
				slog.Float64("threshold", *req.Threshold))
			return nil
		}
		runner = audit.NewRunner(*req.Threshold, audit.DefaultWorkers)
	}

	report, err := runner.Run(ctx, req.Items)
	if err != nil {
		return fmt.Errorf("[AuditRequestConsumer] audit %s failed: %w", req.RequestID, err)
	}
	report.RequestID = req.RequestID

	if c.metrics != nil {
		c.metrics.ObserveAudit(report.Summary)
	}

	if err := c.publisher.Publish(ctx, c.resultsTopic, req.RequestID, report); err != nil {
		return fmt.Errorf("[AuditRequestConsumer] failed to publish report %s: %w", req.RequestID, err)
	}

	if c.tracker != nil {
		if err := c.tracker.MarkProcessed(ctx, req.RequestID); err != nil {
			slog.Warn("[AuditRequestConsumer] Failed to mark request processed",
				slog.String("request_id", req.RequestID),
				slog.String("error", err.Error()))
		}
	}

	slog.Info("[AuditRequestConsumer] Published audit report",
		slog.String("request_id", req.RequestID),
		slog.Int("total", report.Summary.Total),
		slog.Int("flagged", report.Summary.FlaggedCount))
	return nil
}
