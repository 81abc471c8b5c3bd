// Package moderation wires the relevance classifier into comment
// submission, relevance checks and audits.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/storyguard/internal/audit"
	"github.com/spacesedan/storyguard/internal/db"
	"github.com/spacesedan/storyguard/internal/metrics"
	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/relevance"
	"github.com/spacesedan/storyguard/internal/spam"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200

	ReasonValidationSkipped = "Story lookup failed; validation skipped"
	failOpenConfidence      = 0.5
)

var ErrCommentRejected = errors.New("comment rejected")

// RejectionError carries the user facing reason a submission was refused.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return ErrCommentRejected
}

// Recorder receives every validation outcome. *validationlog.Log
// implements it.
type Recorder interface {
	Record(entry models.ValidationLogEntry)
}

type Service struct {
	store     db.Store
	runner    *audit.Runner
	metrics   *metrics.Metrics
	recorder  Recorder
	pageLimit int
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithAuditRunner(r *audit.Runner) Option {
	return func(s *Service) { s.runner = r }
}

func WithPageLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.pageLimit = limit
		}
	}
}

func NewService(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		runner:    audit.NewRunner(audit.DefaultFlagThreshold, audit.DefaultWorkers),
		pageLimit: DefaultPageLimit,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitComment stores a comment that clears the lenient gate and returns
// the relevance verdict alongside it. The verdict never blocks the
// comment; when the story cannot be loaded the verdict falls back to an
// optimistic default.
func (s *Service) SubmitComment(ctx context.Context, storyID, author, text string) (models.Comment, models.ValidationResult, error) {
	if err := admit(text); err != nil {
		slog.Info("[CommentService] Rejected comment at submission",
			slog.String("story_id", storyID),
			slog.String("reason", err.Reason))
		return models.Comment{}, models.ValidationResult{}, err
	}

	comment := models.Comment{
		ID:        s.newID(),
		StoryID:   storyID,
		Author:    author,
		Content:   text,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertComment(ctx, comment); err != nil {
		return models.Comment{}, models.ValidationResult{}, fmt.Errorf("[CommentService] failed to store comment: %w", err)
	}

	failOpen := false
	var result models.ValidationResult

	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		failOpen = true
		result = models.ValidationResult{
			IsValid:    true,
			Confidence: failOpenConfidence,
			Reason:     ReasonValidationSkipped,
		}
		slog.Warn("[CommentService] Story lookup failed, accepting comment without validation",
			slog.String("comment_id", comment.ID),
			slog.String("story_id", storyID),
			slog.String("error", err.Error()))
	} else {
		result = relevance.ValidateComment(text, story.ContentItem)
		logVerdict(comment.ID, storyID, result)
	}

	s.observe(models.ValidationPathSubmission, comment.ID, storyID, result, failOpen)
	return comment, result, nil
}

func admit(text string) *RejectionError {
	if strings.TrimSpace(text) == "" {
		return &RejectionError{Reason: relevance.ReasonRequired}
	}
	verdict := spam.Lenient.Admit(text)
	switch {
	case verdict.Passed:
		return nil
	case verdict.Rule == spam.RuleTooShort:
		return &RejectionError{Reason: relevance.ReasonTooShort(spam.Lenient.MinLength)}
	default:
		return &RejectionError{Reason: relevance.ReasonSpam}
	}
}

// CheckRelevance runs the strict validation for text against a stored
// story without persisting anything.
func (s *Service) CheckRelevance(ctx context.Context, storyID, text string) (models.ValidationResult, error) {
	story, err := s.store.GetStory(ctx, storyID)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("[CommentService] relevance check for story %s: %w", storyID, err)
	}

	result := relevance.ValidateComment(text, story.ContentItem)
	s.observe(models.ValidationPathRelevance, "", storyID, result, false)
	return result, nil
}

// ValidateStored validates a comment that is already persisted, as the
// stream handler sees it.
func (s *Service) ValidateStored(ctx context.Context, comment models.Comment) (models.ValidationResult, error) {
	story, err := s.store.GetStory(ctx, comment.StoryID)
	if err != nil {
		return models.ValidationResult{}, fmt.Errorf("[CommentService] story for comment %s: %w", comment.ID, err)
	}

	result := relevance.ValidateComment(comment.Content, story.ContentItem)
	logVerdict(comment.ID, comment.StoryID, result)
	s.observe(models.ValidationPathStream, comment.ID, comment.StoryID, result, false)
	return result, nil
}

// AuditComments audits one page of stored comments, newest first. A nil
// threshold uses the service default.
func (s *Service) AuditComments(ctx context.Context, page, limit int, threshold *float64) (models.AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	rows, total, err := s.store.ListCommentsWithStories(ctx, page, limit)
	if err != nil {
		return models.AuditPage{}, fmt.Errorf("[CommentService] failed to load comments for audit: %w", err)
	}

	items := make([]models.AuditItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.AuditItem{
			CommentID: row.Comment.ID,
			StoryID:   row.Comment.StoryID,
			Comment:   row.Comment.Content,
			Story:     row.Story,
		})
	}

	runner := s.runner
	if threshold != nil {
		runner = audit.NewRunner(*threshold, audit.DefaultWorkers)
	}

	report, err := runner.Run(ctx, items)
	if err != nil {
		return models.AuditPage{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveAudit(report.Summary)
	}

	return models.AuditPage{
		Records: report.Records,
		Summary: report.Summary,
		Pagination: models.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}, nil
}

type DictionarySnapshot struct {
	Location []relevance.Category `json:"location"`
	Theme    []relevance.Category `json:"theme"`
}

func (s *Service) Dictionaries() DictionarySnapshot {
	return DictionarySnapshot{
		Location: relevance.LocationDictionary(),
		Theme:    relevance.ThemeDictionary(),
	}
}

func (s *Service) observe(path models.ValidationPath, commentID, storyID string, result models.ValidationResult, failOpen bool) {
	if s.metrics != nil {
		s.metrics.ObserveValidation(path, result, failOpen)
	}
	if s.recorder != nil {
		s.recorder.Record(models.ValidationLogEntry{
			CommentID:  commentID,
			StoryID:    storyID,
			Path:       path,
			FailOpen:   failOpen,
			Validation: result,
			CreatedAt:  s.now(),
		})
	}
}

func logVerdict(commentID, storyID string, result models.ValidationResult) {
	if result.IsValid {
		slog.Debug("[CommentService] Comment is relevant",
			slog.String("comment_id", commentID),
			slog.String("story_id", storyID),
			slog.Float64("confidence", result.Confidence))
		return
	}
	slog.Info("[CommentService] Comment flagged as not relevant",
		slog.String("comment_id", commentID),
		slog.String("story_id", storyID),
		slog.String("reason", result.Reason),
		slog.Float64("confidence", result.Confidence))
}
