package audit

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/relevance"
)

var baliStory = &models.ContentItem{
	Title: "Exploring Ubud, Bali",
	Tags:  []string{"bali"},
}

func relevantItems(n int) []models.AuditItem {
	items := make([]models.AuditItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.AuditItem{
			CommentID: fmt.Sprintf("c-%d", i),
			StoryID:   "s-1",
			Comment:   "Bali was the highlight of our year",
			Story:     baliStory,
		})
	}
	return items
}

func TestRunFlagsLowConfidence(t *testing.T) {
	items := relevantItems(7)
	items = append(items,
		models.AuditItem{CommentID: "irrelevant", StoryID: "s-1", Comment: "Qwerty zxcvb plmkn", Story: baliStory},
		models.AuditItem{CommentID: "spam", StoryID: "s-1", Comment: "zzzzzzzzzzzzzz", Story: baliStory},
		models.AuditItem{CommentID: "orphan", StoryID: "missing", Comment: "Bali was great"},
	)

	report, err := NewRunner(DefaultFlagThreshold, 3).Run(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, 10, report.Summary.Total)
	assert.Equal(t, 3, report.Summary.FlaggedCount)
	assert.Equal(t, 30.0, report.Summary.FlaggedPercentage)

	byID := make(map[string]models.AuditRecord)
	for _, record := range report.Records {
		byID[record.CommentID] = record
	}

	assert.False(t, byID["c-0"].Flagged)
	assert.True(t, byID["c-0"].Validation.IsValid)

	assert.True(t, byID["irrelevant"].Flagged)
	assert.Equal(t, relevance.ReasonIrrelevant, byID["irrelevant"].Validation.Reason)

	assert.True(t, byID["spam"].Flagged)
	assert.Equal(t, relevance.ReasonSpam, byID["spam"].Validation.Reason)

	orphan := byID["orphan"]
	assert.True(t, orphan.Flagged)
	assert.False(t, orphan.Validation.IsValid)
	assert.Equal(t, ReasonStoryNotFound, orphan.Validation.Reason)
	assert.Empty(t, orphan.Sentiment)
}

func TestRunKeepsInputOrder(t *testing.T) {
	items := relevantItems(50)

	report, err := NewRunner(DefaultFlagThreshold, 8).Run(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, report.Records, len(items))

	for i, record := range report.Records {
		assert.Equal(t, items[i].CommentID, record.CommentID)
	}
}

func TestRunSummaryBounds(t *testing.T) {
	for _, n := range []int{0, 1, 5, 23} {
		report, err := AuditBatch(context.Background(), relevantItems(n), DefaultFlagThreshold)
		require.NoError(t, err)

		assert.Equal(t, n, report.Summary.Total)
		assert.GreaterOrEqual(t, report.Summary.FlaggedCount, 0)
		assert.LessOrEqual(t, report.Summary.FlaggedCount, n)
	}
}

func TestRunThresholdIsIndependentOfValidity(t *testing.T) {
	items := relevantItems(1)

	report, err := NewRunner(0.9, 1).Run(context.Background(), items)
	require.NoError(t, err)

	record := report.Records[0]
	assert.True(t, record.Validation.IsValid)
	assert.True(t, record.Flagged)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(DefaultFlagThreshold, 2).Run(ctx, relevantItems(10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, models.AuditSummary{}, Summarize(nil))

	records := []models.AuditRecord{{Flagged: true}, {}, {}}
	assert.Equal(t, models.AuditSummary{Total: 3, FlaggedCount: 1, FlaggedPercentage: 33.33}, Summarize(records))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(0.25, 0)
	assert.Equal(t, DefaultWorkers, r.workers)
	assert.Equal(t, 0.25, r.Threshold())
}

func TestValidThreshold(t *testing.T) {
	for _, v := range []float64{0, 0.3, 1} {
		assert.True(t, ValidThreshold(v), v)
	}
	for _, v := range []float64{-0.1, 1.01, math.NaN(), math.Inf(1)} {
		assert.False(t, ValidThreshold(v), v)
	}
}
