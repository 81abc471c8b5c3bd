package db

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/storyguard/config"
	"github.com/spacesedan/storyguard/internal/models"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.PutStory(models.Story{ID: "s-1", ContentItem: models.ContentItem{Title: "Bali"}})

	_, err := store.GetStory(ctx, "s-2")
	assert.ErrorIs(t, err, ErrStoryNotFound)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		storyID := "s-1"
		if i == 2 {
			storyID = "missing"
		}
		require.NoError(t, store.InsertComment(ctx, models.Comment{
			ID:        fmt.Sprintf("c-%d", i),
			StoryID:   storyID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	got, err := store.GetComment(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.StoryID)

	_, err = store.GetComment(ctx, "c-9")
	assert.ErrorIs(t, err, ErrCommentNotFound)

	rows, total, err := store.ListCommentsWithStories(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "c-2", rows[0].Comment.ID)
	assert.Nil(t, rows[0].Story)
	assert.Equal(t, "Bali", rows[1].Story.Title)

	rows, _, err = store.ListCommentsWithStories(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c-0", rows[0].Comment.ID)
}

func TestOpenBackends(t *testing.T) {
	store, err := Open(context.Background(), config.Config{StoreBackend: config.StoreBackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open(context.Background(), config.Config{StoreBackend: "cassandra"})
	assert.Error(t, err)
}
