package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sethvargo/go-retry"

	"github.com/spacesedan/storyguard/internal/models"
)

const (
	STORIES_TABLE_NAME  = "Stories"
	COMMENTS_TABLE_NAME = "Comments"

	maxBatchGetKeys = 100
)

var errUnprocessedKeys = errors.New("unprocessed keys remain")

// DynamoAPI is the part of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

type DynamoStore struct {
	client        DynamoAPI
	storiesTable  string
	commentsTable string
}

func NewDynamoStore(client DynamoAPI, storiesTable, commentsTable string) *DynamoStore {
	if storiesTable == "" {
		storiesTable = STORIES_TABLE_NAME
	}
	if commentsTable == "" {
		commentsTable = COMMENTS_TABLE_NAME
	}
	return &DynamoStore{client: client, storiesTable: storiesTable, commentsTable: commentsTable}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) GetStory(ctx context.Context, id string) (models.Story, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.storiesTable),
		Key:       idKey(id),
	})
	if err != nil {
		return models.Story{}, fmt.Errorf("[DynamoDB] Failed to get story %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return models.Story{}, ErrStoryNotFound
	}

	var story models.Story
	if err := attributevalue.UnmarshalMap(out.Item, &story); err != nil {
		return models.Story{}, fmt.Errorf("[DynamoDB] Unable to unmarshal story %s: %w", id, err)
	}
	return story, nil
}

func (s *DynamoStore) InsertComment(ctx context.Context, comment models.Comment) error {
	item, err := attributevalue.MarshalMap(comment)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Unable to marshal comment: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.commentsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put comment: %w", err)
	}
	return nil
}

func (s *DynamoStore) GetComment(ctx context.Context, id string) (models.Comment, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.commentsTable),
		Key:       idKey(id),
	})
	if err != nil {
		return models.Comment{}, fmt.Errorf("[DynamoDB] Failed to get comment %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return models.Comment{}, ErrCommentNotFound
	}

	var comment models.Comment
	if err := attributevalue.UnmarshalMap(out.Item, &comment); err != nil {
		return models.Comment{}, fmt.Errorf("[DynamoDB] Unable to unmarshal comment %s: %w", id, err)
	}
	return comment, nil
}

// ListCommentsWithStories scans the whole comments table. DynamoDB has no
// global ordering, so the page is cut after sorting in memory.
func (s *DynamoStore) ListCommentsWithStories(ctx context.Context, page, limit int) ([]models.CommentWithStory, int, error) {
	comments, err := s.scanComments(ctx)
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	total := len(comments)
	start := pageOffset(page, limit)
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	comments = comments[start:end]

	storyIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool)
	for _, c := range comments {
		if !seen[c.StoryID] {
			seen[c.StoryID] = true
			storyIDs = append(storyIDs, c.StoryID)
		}
	}

	stories, err := s.batchGetStories(ctx, storyIDs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]models.CommentWithStory, 0, len(comments))
	for _, c := range comments {
		row := models.CommentWithStory{Comment: c}
		if story, ok := stories[c.StoryID]; ok {
			item := story.ContentItem
			row.Story = &item
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (s *DynamoStore) scanComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.commentsTable),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for comments failed: %w", err)
		}
		var commentPage []models.Comment
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &commentPage); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal comment page", slog.String("error", err.Error()))
			return nil, err
		}
		comments = append(comments, commentPage...)
	}
	return comments, nil
}

func (s *DynamoStore) batchGetStories(ctx context.Context, ids []string) (map[string]models.Story, error) {
	stories := make(map[string]models.Story, len(ids))

	for i := 0; i < len(ids); i += maxBatchGetKeys {
		end := i + maxBatchGetKeys
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-i)
		for _, id := range ids[i:end] {
			keys = append(keys, idKey(id))
		}

		request := map[string]types.KeysAndAttributes{
			s.storiesTable: {Keys: keys},
		}

		attempt := 0
		backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			attempt++
			out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to batch get stories: %w", err)
			}

			var page []models.Story
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[s.storiesTable], &page); err != nil {
				return fmt.Errorf("[DynamoDB] Unable to unmarshal stories: %w", err)
			}
			for _, story := range page {
				stories[story.ID] = story
			}

			request = out.UnprocessedKeys
			if len(request) == 0 {
				return nil
			}
			slog.Warn("[DynamoDB] Retrying unprocessed story keys...",
				slog.Int("attempt", attempt),
				slog.Int("remaining", len(request[s.storiesTable].Keys)))
			return retry.RetryableError(errUnprocessedKeys)
		})
		if errors.Is(err, errUnprocessedKeys) {
			// The rows still come back, joined to no story.
			slog.Error("[DynamoDB] Some stories were not read even after retries",
				slog.Int("remaining", len(request[s.storiesTable].Keys)))
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return stories, nil
}

func (s *DynamoStore) Close() {}
