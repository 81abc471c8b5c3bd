package relevance

import (
	"math"
	"strings"
)

const (
	locationWeight = 3
	themeWeight    = 2
	otherWeight    = 1
	contextWeight  = 2

	// confidenceDivisor is a calibration constant: two location hits, or a
	// location and a theme, already saturate confidence.
	confidenceDivisor = 5.0

	// EmptyKeywordConfidence is reported when a story has no keywords, so
	// the author is not penalised for missing context.
	EmptyKeywordConfidence = 0.5
)

// Score matches a comment against a story's keywords and returns a
// confidence in [0,1] with the keywords that matched.
func Score(comment string, keywords KeywordSet) (float64, []string) {
	if keywords.Len() == 0 {
		return EmptyKeywordConfidence, nil
	}

	text := strings.ToLower(comment)
	raw := 0
	var matched []string

	for _, k := range keywords.order {
		if strings.Contains(text, k) {
			raw += keywordWeight(k)
			matched = append(matched, k)
		}
	}

	if raw == 0 {
		// No direct hit. Credit location terms the story itself points at.
		for _, c := range locationDictionary {
			for _, term := range c.Terms {
				if !strings.Contains(text, term) {
					continue
				}
				if keywords.Contains(c.Name) || keywords.containsAny(c.Terms) {
					raw += contextWeight
					matched = append(matched, c.Name+"-context: "+term)
				}
			}
		}
	}

	return normalize(raw), matched
}

func keywordWeight(k string) int {
	switch {
	case IsLocationKeyword(k):
		return locationWeight
	case IsThemeKeyword(k):
		return themeWeight
	default:
		return otherWeight
	}
}

func normalize(raw int) float64 {
	return math.Min(float64(raw)/confidenceDivisor, 1)
}
