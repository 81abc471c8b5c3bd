package db

import (
	"context"
	"sort"
	"sync"

	"github.com/spacesedan/storyguard/internal/models"
)

// MemoryStore keeps everything in process. It backs local runs with
// STORE_BACKEND=memory and the service tests.
type MemoryStore struct {
	mu       sync.RWMutex
	stories  map[string]models.Story
	comments map[string]models.Comment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stories:  make(map[string]models.Story),
		comments: make(map[string]models.Comment),
	}
}

func (s *MemoryStore) PutStory(story models.Story) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stories[story.ID] = story
}

func (s *MemoryStore) GetStory(_ context.Context, id string) (models.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.stories[id]
	if !ok {
		return models.Story{}, ErrStoryNotFound
	}
	return story, nil
}

func (s *MemoryStore) InsertComment(_ context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[comment.ID] = comment
	return nil
}

func (s *MemoryStore) GetComment(_ context.Context, id string) (models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, ErrCommentNotFound
	}
	return comment, nil
}

func (s *MemoryStore) ListCommentsWithStories(_ context.Context, page, limit int) ([]models.CommentWithStory, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comments := make([]models.Comment, 0, len(s.comments))
	for _, c := range s.comments {
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	total := len(comments)
	start := pageOffset(page, limit)
	if start >= total {
		return nil, total, nil
	}
	end := min(start+limit, total)

	out := make([]models.CommentWithStory, 0, end-start)
	for _, c := range comments[start:end] {
		row := models.CommentWithStory{Comment: c}
		if story, ok := s.stories[c.StoryID]; ok {
			item := story.ContentItem
			row.Story = &item
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (s *MemoryStore) Close() {}
