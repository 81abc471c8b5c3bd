package models

type AuditItem struct {
	CommentID string       `json:"commentId"`
	StoryID   string       `json:"storyId"`
	Comment   string       `json:"comment"`
	Story     *ContentItem `json:"story,omitempty"`
}

type AuditRecord struct {
	CommentID  string           `json:"commentId"`
	StoryID    string           `json:"storyId"`
	Validation ValidationResult `json:"validation"`
	Flagged    bool             `json:"flagged"`
	Sentiment  string           `json:"sentiment,omitempty"`
}

type AuditSummary struct {
	Total             int     `json:"total"`
	FlaggedCount      int     `json:"flaggedCount"`
	FlaggedPercentage float64 `json:"flaggedPercentage"`
}

type AuditReport struct {
	RequestID string        `json:"requestId,omitempty"`
	Records   []AuditRecord `json:"records"`
	Summary   AuditSummary  `json:"summary"`
}

// AuditRequest is the message body consumed by the audit worker.
type AuditRequest struct {
	RequestID string      `json:"requestId"`
	Threshold *float64    `json:"threshold,omitempty"`
	Items     []AuditItem `json:"items"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// AuditPage is one page of stored comments run through the auditor.
type AuditPage struct {
	Records    []AuditRecord `json:"records"`
	Summary    AuditSummary  `json:"summary"`
	Pagination Pagination    `json:"pagination"`
}
