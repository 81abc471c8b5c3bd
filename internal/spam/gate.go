// Package spam holds the pattern gates that reject degenerate comment text
// before any relevance scoring happens.
//
// There are two gates with independently tuned thresholds. Strict guards
// the relevance path, Lenient guards comment submission.
package spam

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

const (
	RuleRepeatedCharacters = "repeated_characters"
	RuleNoLetters          = "no_letters"
	RuleURL                = "url"
	RuleTooShort           = "too_short"
)

var urlPattern = regexp.MustCompile(`(?i)https?://`)

type Gate struct {
	Name string
	// MaxRun is the length of a run of one repeated character that trips
	// the gate.
	MaxRun     int
	RejectURLs bool
	// MinLength is the minimum trimmed length admitted alongside the gate.
	MinLength int

	runPattern *regexp2.Regexp
}

// Verdict is the outcome of a gate check. Rule is empty when Passed.
type Verdict struct {
	Passed bool
	Rule   string
}

var (
	Strict  = NewGate("strict", 5, true, 10)
	Lenient = NewGate("lenient", 11, false, 3)
)

func NewGate(name string, maxRun int, rejectURLs bool, minLength int) *Gate {
	// RE2 has no backreferences, hence regexp2.
	pattern := fmt.Sprintf(`(.)\1{%d,}`, maxRun-1)
	return &Gate{
		Name:       name,
		MaxRun:     maxRun,
		RejectURLs: rejectURLs,
		MinLength:  minLength,
		runPattern: regexp2.MustCompile(pattern, regexp2.None),
	}
}

// Inspect runs the pattern checks only. Length is not considered.
func (g *Gate) Inspect(text string) Verdict {
	if g.hasRepeatedRun(text) {
		return Verdict{Rule: RuleRepeatedCharacters}
	}
	if !hasLetter(text) {
		return Verdict{Rule: RuleNoLetters}
	}
	if g.RejectURLs && urlPattern.MatchString(text) {
		return Verdict{Rule: RuleURL}
	}
	return Verdict{Passed: true}
}

// Passes reports whether text is not spam according to this gate.
func (g *Gate) Passes(text string) bool {
	return g.Inspect(text).Passed
}

// LongEnough reports whether the trimmed text meets the gate's minimum length.
func (g *Gate) LongEnough(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= g.MinLength
}

// Admit combines the length check with the pattern checks, length first.
func (g *Gate) Admit(text string) Verdict {
	if !g.LongEnough(text) {
		return Verdict{Rule: RuleTooShort}
	}
	return g.Inspect(text)
}

func (g *Gate) hasRepeatedRun(text string) bool {
	ok, err := g.runPattern.MatchString(text)
	return err == nil && ok
}

func hasLetter(text string) bool {
	for _, r := range text {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// Check reports whether text passes the strict or the lenient gate.
func Check(text string, strict bool) bool {
	if strict {
		return Strict.Passes(text)
	}
	return Lenient.Passes(text)
}
