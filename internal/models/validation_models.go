package models

import "time"

type ValidationResult struct {
	IsValid         bool     `json:"isValid"`
	Confidence      float64  `json:"confidence"`
	Reason          string   `json:"reason,omitempty"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
	// StoryKeywords is a hint for rejected comments: a few of the
	// keywords the story was classified under.
	StoryKeywords []string `json:"storyKeywords,omitempty"`
}

// ValidationPath names the call site a validation came from.
type ValidationPath string

const (
	ValidationPathSubmission ValidationPath = "submission"
	ValidationPathRelevance  ValidationPath = "relevance"
	ValidationPathStream     ValidationPath = "stream"
)

// ValidationLogEntry is one document in the validation log index.
type ValidationLogEntry struct {
	CommentID  string           `json:"commentId"`
	StoryID    string           `json:"storyId"`
	Path       ValidationPath   `json:"path"`
	FailOpen   bool             `json:"failOpen,omitempty"`
	Validation ValidationResult `json:"validation"`
	CreatedAt  time.Time        `json:"createdAt"`
}
