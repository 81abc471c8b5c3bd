package models

import "time"

type Comment struct {
	ID        string    `json:"id" dynamodbav:"id"`
	StoryID   string    `json:"story_id" dynamodbav:"story_id"`
	Author    string    `json:"author" dynamodbav:"author"`
	Content   string    `json:"content" dynamodbav:"content"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// CommentWithStory is a stored comment joined with the story it belongs to.
// Story is nil when the story could not be found.
type CommentWithStory struct {
	Comment Comment
	Story   *ContentItem
}
