package relevance

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/storyguard/internal/models"
	"github.com/spacesedan/storyguard/internal/spam"
)

const (
	ReasonRequired   = "Comment content is required"
	ReasonSpam       = "Comment appears to be spam or contains inappropriate content"
	ReasonIrrelevant = "Comment content does not appear to be relevant to the story topic"

	minAcceptConfidence     = 0.1
	genericTravelConfidence = 0.3
	minEngagementLength     = 15
	maxKeywordHints         = 5
)

var genericTravelWords = []string{
	"amazing", "great", "love", "visit", "recommend", "beautiful", "awesome",
	"wonderful", "trip", "travel", "experience", "place", "fantastic",
	"incredible", "perfect", "enjoy",
}

var engagementWords = []string{
	"the", "very", "nice", "love", "great", "good", "really", "thanks",
	"thank you", "wow", "awesome", "beautiful", "cool", "interesting", "helpful",
}

// ReasonTooShort is the rejection reason for comments under minLength
// characters.
func ReasonTooShort(minLength int) string {
	return fmt.Sprintf("Comment must be at least %d characters long", minLength)
}

// ValidateComment extracts the story's keywords and validates the comment
// against them.
func ValidateComment(comment string, item models.ContentItem) models.ValidationResult {
	return ValidateRelevance(comment, ExtractKeywords(item))
}

// ValidateRelevance decides whether a comment belongs under a story with
// the given keywords. It never fails: bad input is reported as an invalid
// result.
//
// Acceptance is deliberately permissive. Any of a minimum confidence, a
// generic travel word next to a keyword match, or plain engagement
// vocabulary in a long enough comment is sufficient.
func ValidateRelevance(comment string, keywords KeywordSet) models.ValidationResult {
	if comment == "" {
		return models.ValidationResult{Reason: ReasonRequired}
	}
	if !spam.Strict.LongEnough(comment) {
		return models.ValidationResult{Reason: ReasonTooShort(spam.Strict.MinLength)}
	}
	if !spam.Strict.Passes(comment) {
		return models.ValidationResult{Reason: ReasonSpam}
	}

	if keywords.Len() == 0 {
		return models.ValidationResult{IsValid: true, Confidence: EmptyKeywordConfidence}
	}

	confidence, matched := Score(comment, keywords)

	text := strings.ToLower(comment)
	hasGenericTravel := containsAny(text, genericTravelWords)
	hasMinEngagement := containsAny(text, engagementWords) &&
		utf8.RuneCountInString(strings.TrimSpace(comment)) >= minEngagementLength

	genericFallback := hasGenericTravel && len(matched) > 0

	if confidence >= minAcceptConfidence || genericFallback || hasMinEngagement {
		// Only an acceptance carried by the generic travel fallback is
		// raised to the floor; everything else reports the raw score.
		reported := confidence
		if confidence < minAcceptConfidence && genericFallback {
			reported = math.Max(confidence, genericTravelConfidence)
		}
		return models.ValidationResult{
			IsValid:         true,
			Confidence:      reported,
			MatchedKeywords: matched,
		}
	}

	return models.ValidationResult{
		Reason:          ReasonIrrelevant,
		Confidence:      confidence,
		MatchedKeywords: matched,
		StoryKeywords:   keywords.Head(maxKeywordHints),
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
