package db

import (
	"context"
	"errors"

	"github.com/spacesedan/storyguard/internal/models"
)

var (
	ErrStoryNotFound   = errors.New("story not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Store is the persistence the comment service needs. Stories are owned by
// the content side of the product, the service only reads them.
type Store interface {
	GetStory(ctx context.Context, id string) (models.Story, error)
	InsertComment(ctx context.Context, comment models.Comment) error
	GetComment(ctx context.Context, id string) (models.Comment, error)
	// ListCommentsWithStories returns one page of comments, newest first,
	// joined with their stories, and the total number of comments.
	ListCommentsWithStories(ctx context.Context, page, limit int) ([]models.CommentWithStory, int, error)
	Close()
}

// pageOffset converts a 1-based page into a row offset.
func pageOffset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
