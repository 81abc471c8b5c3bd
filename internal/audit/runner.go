package audit

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/relevance"
	"github.com/spacesedan/storyguard/internal/sentiment"
)

const (
	DefaultFlagThreshold = 0.3
	DefaultWorkers       = 4

	ReasonStoryNotFound = "Story not found for comment"
)

// Runner applies the comment validation pipeline to a batch of stored
// comments and aggregates how many fall under the flag threshold.
type Runner struct {
	threshold float64
	workers   int
}

func NewRunner(threshold float64, workers int) *Runner {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{threshold: threshold, workers: workers}
}

// ValidThreshold reports whether t can be used as a flag threshold.
func ValidThreshold(t float64) bool {
	return !math.IsNaN(t) && t >= 0 && t <= 1
}

func (r *Runner) Threshold() float64 {
	return r.threshold
}

// Run audits items concurrently. Records come back in input order. The only
// error is cancellation of ctx.
func (r *Runner) Run(ctx context.Context, items []models.AuditItem) (models.AuditReport, error) {
	records := make([]models.AuditRecord, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, item := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = r.auditItem(item)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return models.AuditReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.AuditReport{}, err
	}

	summary := Summarize(records)
	slog.Info("[AuditRunner] Audit completed",
		slog.Int("total", summary.Total),
		slog.Int("flagged", summary.FlaggedCount),
		slog.Float64("flagged_percentage", summary.FlaggedPercentage),
		slog.Float64("threshold", r.threshold))

	return models.AuditReport{Records: records, Summary: summary}, nil
}

func (r *Runner) auditItem(item models.AuditItem) models.AuditRecord {
	record := models.AuditRecord{
		CommentID: item.CommentID,
		StoryID:   item.StoryID,
	}

	if item.Story == nil {
		record.Validation = models.ValidationResult{Reason: ReasonStoryNotFound}
		record.Flagged = true
		return record
	}

	record.Validation = relevance.ValidateComment(item.Comment, *item.Story)
	record.Flagged = record.Validation.Confidence < r.threshold
	if item.Comment != "" {
		record.Sentiment = sentiment.Label(item.Comment)
	}
	return record
}

// Summarize counts flagged records. The percentage is rounded to two
// decimals and is 0 for an empty batch.
func Summarize(records []models.AuditRecord) models.AuditSummary {
	summary := models.AuditSummary{Total: len(records)}
	for _, record := range records {
		if record.Flagged {
			summary.FlaggedCount++
		}
	}
	if summary.Total > 0 {
		pct := float64(summary.FlaggedCount) / float64(summary.Total) * 100
		summary.FlaggedPercentage = math.Round(pct*100) / 100
	}
	return summary
}

// AuditBatch runs a one-off audit with the default worker count.
func AuditBatch(ctx context.Context, items []models.AuditItem, threshold float64) (models.AuditReport, error) {
	return NewRunner(threshold, DefaultWorkers).Run(ctx, items)
}
