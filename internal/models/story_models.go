package models

import "time"

// ContentItem is the text of a story as seen by the classifier.
type ContentItem struct {
	Title string   `json:"title" dynamodbav:"title"`
	Body  string   `json:"body" dynamodbav:"body"`
	Tags  []string `json:"tags" dynamodbav:"tags"`
}

type Story struct {
	ID string `json:"id" dynamodbav:"id"`
	ContentItem
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}
