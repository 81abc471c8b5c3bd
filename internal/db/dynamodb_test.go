package db

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/storyguard/internal/models"
)

// fakeDynamo keeps tables in memory keyed by table name and item id.
type fakeDynamo struct {
	tables      map[string]map[string]map[string]types.AttributeValue
	scanPage    int
	unprocessed int
	batchCalls  int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) put(table string, v any) {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		panic(err)
	}
	if f.tables[table] == nil {
		f.tables[table] = make(map[string]map[string]types.AttributeValue)
	}
	id := item["id"].(*types.AttributeValueMemberS).Value
	f.tables[table][id] = item
}

func keyID(key map[string]types.AttributeValue) string {
	return key["id"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.tables[*in.TableName][keyID(in.Key)]}, nil
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.tables[*in.TableName] == nil {
		f.tables[*in.TableName] = make(map[string]map[string]types.AttributeValue)
	}
	f.tables[*in.TableName][keyID(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

// Scan returns items in pages of scanPage items, or everything when
// scanPage is zero.
func (f *fakeDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	ids := make([]string, 0, len(f.tables[*in.TableName]))
	for id := range f.tables[*in.TableName] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]map[string]types.AttributeValue, 0, len(ids))
	for _, id := range ids {
		items = append(items, f.tables[*in.TableName][id])
	}

	start := 0
	if in.ExclusiveStartKey != nil {
		fmt.Sscanf(in.ExclusiveStartKey["offset"].(*types.AttributeValueMemberN).Value, "%d", &start)
	}
	if f.scanPage == 0 || start+f.scanPage >= len(items) {
		return &dynamodb.ScanOutput{Items: items[start:]}, nil
	}

	end := start + f.scanPage
	return &dynamodb.ScanOutput{
		Items: items[start:end],
		LastEvaluatedKey: map[string]types.AttributeValue{
			"offset": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", end)},
		},
	}, nil
}

// BatchGetItem holds back the first key as unprocessed while unprocessed
// is positive.
func (f *fakeDynamo) BatchGetItem(_ context.Context, in *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	f.batchCalls++
	out := &dynamodb.BatchGetItemOutput{
		Responses:       make(map[string][]map[string]types.AttributeValue),
		UnprocessedKeys: make(map[string]types.KeysAndAttributes),
	}
	for table, ka := range in.RequestItems {
		keys := ka.Keys
		if f.unprocessed > 0 && len(keys) > 0 {
			f.unprocessed--
			out.UnprocessedKeys[table] = types.KeysAndAttributes{Keys: keys[:1]}
			keys = keys[1:]
		}
		for _, key := range keys {
			if item, ok := f.tables[table][keyID(key)]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func seedStore(t *testing.T, f *fakeDynamo) *DynamoStore {
	t.Helper()

	f.put(STORIES_TABLE_NAME, models.Story{
		ID:          "s-1",
		ContentItem: models.ContentItem{Title: "Exploring Ubud, Bali", Tags: []string{"bali"}},
	})
	f.put(STORIES_TABLE_NAME, models.Story{
		ID:          "s-2",
		ContentItem: models.ContentItem{Title: "A weekend in Jakarta"},
	})

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		storyID := "s-1"
		if i%2 == 1 {
			storyID = "s-2"
		}
		if i == 4 {
			storyID = "gone"
		}
		f.put(COMMENTS_TABLE_NAME, models.Comment{
			ID:        fmt.Sprintf("c-%d", i),
			StoryID:   storyID,
			Content:   "comment",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	return NewDynamoStore(f, "", "")
}

func TestDynamoGetStory(t *testing.T) {
	store := seedStore(t, newFakeDynamo())

	story, err := store.GetStory(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Exploring Ubud, Bali", story.Title)
	assert.Equal(t, []string{"bali"}, story.Tags)

	_, err = store.GetStory(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrStoryNotFound)
}

func TestDynamoInsertAndGetComment(t *testing.T) {
	store := NewDynamoStore(newFakeDynamo(), "", "")
	comment := models.Comment{
		ID:        "c-1",
		StoryID:   "s-1",
		Author:    "wayan",
		Content:   "Bali was wonderful",
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.InsertComment(context.Background(), comment))

	got, err := store.GetComment(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, comment.Content, got.Content)
	assert.True(t, comment.CreatedAt.Equal(got.CreatedAt))

	_, err = store.GetComment(context.Background(), "c-2")
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func TestDynamoListCommentsWithStories(t *testing.T) {
	f := newFakeDynamo()
	f.scanPage = 2
	store := seedStore(t, f)

	rows, total, err := store.ListCommentsWithStories(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 3)

	// newest first
	assert.Equal(t, "c-4", rows[0].Comment.ID)
	assert.Nil(t, rows[0].Story)
	assert.Equal(t, "c-3", rows[1].Comment.ID)
	require.NotNil(t, rows[1].Story)
	assert.Equal(t, "A weekend in Jakarta", rows[1].Story.Title)
	assert.Equal(t, "c-2", rows[2].Comment.ID)
	assert.Equal(t, "Exploring Ubud, Bali", rows[2].Story.Title)

	rows, total, err = store.ListCommentsWithStories(context.Background(), 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c-1", rows[0].Comment.ID)
	assert.Equal(t, "c-0", rows[1].Comment.ID)

	rows, total, err = store.ListCommentsWithStories(context.Background(), 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, rows)
}

func TestDynamoListRetriesUnprocessedKeys(t *testing.T) {
	f := newFakeDynamo()
	f.unprocessed = 1
	store := seedStore(t, f)

	rows, _, err := store.ListCommentsWithStories(context.Background(), 1, 4)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 2, f.batchCalls)
	for _, row := range rows[1:] {
		assert.NotNil(t, row.Story, row.Comment.ID)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, pageOffset(0, 50))
	assert.Equal(t, 0, pageOffset(1, 50))
	assert.Equal(t, 100, pageOffset(3, 50))
}
