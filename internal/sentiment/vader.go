package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"

	labelThreshold = 0.20
)

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	bareURLPattern      = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1") // keep only the link text
	return bareURLPattern.ReplaceAllString(input, "")
}

// PlainText renders markdown comment text and strips markup and links.
func PlainText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	text := html.UnescapeString(htmlTagPattern.ReplaceAllString(string(output), " "))
	return strings.Join(strings.Fields(text), " ")
}

// Analyze returns the VADER compound score of a comment and its label.
func Analyze(text string) (float64, string) {
	score := analyzer.PolarityScores(PlainText(text)).Compound

	switch {
	case score >= labelThreshold:
		return score, LabelPositive
	case score <= -labelThreshold:
		return score, LabelNegative
	default:
		return score, LabelNeutral
	}
}

// Label is Analyze without the score.
func Label(text string) string {
	_, label := Analyze(text)
	return label
}
