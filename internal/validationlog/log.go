package validationlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/clients"
	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/utils"
)

const DefaultIndex = "comment-validations"

// Log ships validation outcomes to OpenSearch in bulk. Record never blocks
// on the network; Run does the flushing.
type Log struct {
	client  *opensearch.Client
	index   string
	buffer  *utils.BatchBuffer[models.ValidationLogEntry]
	flushCh chan struct{}
}

func New(client *opensearch.Client, index string, batchSize int) *Log {
	if index == "" {
		index = DefaultIndex
	}
	return &Log{
		client:  client,
		index:   index,
		buffer:  utils.NewBatchBuffer[models.ValidationLogEntry](batchSize),
		flushCh: make(chan struct{}, 1),
	}
}

func (l *Log) Record(entry models.ValidationLogEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if l.buffer.Add(entry) {
		select {
		case l.flushCh <- struct{}{}:
		default:
		}
	}
}

// Run flushes on a timer and whenever the buffer fills, until ctx is done.
// Whatever is still buffered at shutdown gets one last flush.
func (l *Log) Run(ctx context.Context) {
	ticker := time.NewTicker(utils.BATCH_TIMEOUT)
	defer ticker.Stop()

	slog.Info("[ValidationLog] Shipping validations", slog.String("index", l.index))

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			l.flushAndLog(shutdownCtx)
			cancel()
			slog.Info("[ValidationLog] Stopped")
			return
		case <-ticker.C:
			l.flushAndLog(ctx)
		case <-l.flushCh:
			l.flushAndLog(ctx)
		}
	}
}

func (l *Log) flushAndLog(ctx context.Context) {
	if err := l.Flush(ctx); err != nil {
		slog.Error("[ValidationLog] Failed to flush validations",
			slog.String("error", err.Error()))
	}
}

type bulkResponse struct {
	Errors bool `json:"errors"`
}

// Flush sends everything buffered in one bulk request. A failed batch is
// dropped; the log is best effort.
func (l *Log) Flush(ctx context.Context) error {
	batch := l.buffer.GetAndClear()
	if len(batch) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, entry := range batch {
		body.WriteString(`{"index":{}}` + "\n")
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("[ValidationLog] failed to encode entry for comment %s: %w", entry.CommentID, err)
		}
	}

	res, err := l.client.Do(ctx, opensearchapi.BulkReq{
		Index: l.index,
		Body:  &body,
	}, nil)
	if err != nil {
		return fmt.Errorf("[ValidationLog] bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("[ValidationLog] opensearch error: %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err == nil && parsed.Errors {
		slog.Warn("[ValidationLog] Some validations were rejected by OpenSearch",
			slog.Int("batch_size", len(batch)))
	}

	slog.Debug("[ValidationLog] Flushed validations", slog.Int("batch_size", len(batch)))
	return nil
}

// FromConfig returns nil when the validation log is switched off.
func FromConfig(ctx context.Context, env string, cfg config.OpenSearchConfig) (*Log, *opensearch.Client, error) {
	if !cfg.Enabled {
		slog.Info("[ValidationLog] Disabled")
		return nil, nil, nil
	}

	client, err := clients.NewOpensearchClient(ctx, env, cfg)
	if err != nil {
		return nil, nil, err
	}
	return New(client, cfg.Index, utils.BATCH_SIZE), client, nil
}
