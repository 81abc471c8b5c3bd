package streams

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/models"
)

// Validator is satisfied by *moderation.Service.
type Validator interface {
	ValidateStored(ctx context.Context, comment models.Comment) (models.ValidationResult, error)
}

// ProcessCommentRecord validates the comment carried by an INSERT record.
// Other event types return nil with no error. A comment whose story is
// gone is logged and skipped since retrying cannot fix it.
func ProcessCommentRecord(ctx context.Context, v Validator, record events.DynamoDBEventRecord) (*models.ValidationResult, error) {
	if record.EventName != string(events.DynamoDBOperationTypeInsert) {
		slog.Debug("[CommentStream] Skipping non-INSERT record",
			slog.String("event_id", record.EventID),
			slog.String("event_name", record.EventName))
		return nil, nil
	}

	comment, err := UnmarshalNewImage[models.Comment](record)
	if err != nil {
		slog.Error("[CommentStream] Failed to unmarshal comment from stream record",
			slog.String("event_id", record.EventID),
			slog.String("error", err.Error()))
		return nil, err
	}

	result, err := v.ValidateStored(ctx, comment)
	if errors.Is(err, db.ErrStoryNotFound) {
		slog.Warn("[CommentStream] Story missing for streamed comment",
			slog.String("comment_id", comment.ID),
			slog.String("story_id", comment.StoryID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// HandleComments processes a stream batch and reports failed records so
// Lambda retries only those.
func HandleComments(ctx context.Context, v Validator, event events.DynamoDBEvent) events.DynamoDBEventResponse {
	var resp events.DynamoDBEventResponse

	for _, record := range event.Records {
		if _, err := ProcessCommentRecord(ctx, v, record); err != nil {
			slog.Error("[CommentStream] Failed to process record",
				slog.String("event_id", record.EventID),
				slog.String("error", err.Error()))
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.DynamoDBBatchItemFailure{
				ItemIdentifier: record.Change.SequenceNumber,
			})
		}
	}

	slog.Info("[CommentStream] Processed stream batch",
		slog.Int("records", len(event.Records)),
		slog.Int("failures", len(resp.BatchItemFailures)))
	return resp
}
