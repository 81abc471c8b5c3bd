package relevance

import (
	"strings"

	"github.com/spacesedan/storyguard/internal/models"
)

// A location inferred from the body alone needs this many distinct terms
// to be trusted. A single theme term is enough.
const (
	minBodyLocationHits = 2
	minThemeHits        = 1
)

// ExtractKeywords derives the keyword set of a story. Tags are trusted as
// is, a single title hit is enough for a location or theme, body text has
// to corroborate a location before it is added.
func ExtractKeywords(item models.ContentItem) KeywordSet {
	var set KeywordSet

	for _, tag := range item.Tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		set.add(strings.ToLower(tag))
	}

	title := strings.ToLower(item.Title)
	body := strings.ToLower(item.Body)

	addTitleMatches(&set, locationDictionary, title)
	addTitleMatches(&set, themeDictionary, title)

	if !hasLocationCategory(set) {
		for _, c := range locationDictionary {
			found := termsIn(c, body)
			if len(found) >= minBodyLocationHits {
				set.add(c.Name)
				set.add(found...)
			}
		}
	}

	for _, c := range themeDictionary {
		found := termsIn(c, body, title)
		if len(found) >= minThemeHits {
			set.add(c.Name)
			set.add(found...)
		}
	}

	return set
}

func addTitleMatches(set *KeywordSet, dictionary []Category, title string) {
	for _, c := range dictionary {
		for _, term := range c.Terms {
			if strings.Contains(title, term) {
				set.add(c.Name, term)
			}
		}
	}
}

// termsIn returns the terms of c found in any of texts.
func termsIn(c Category, texts ...string) []string {
	var found []string
	for _, term := range c.Terms {
		for _, text := range texts {
			if strings.Contains(text, term) {
				found = append(found, term)
				break
			}
		}
	}
	return found
}

func hasLocationCategory(set KeywordSet) bool {
	for _, k := range set.order {
		if isLocationCategory(k) {
			return true
		}
	}
	return false
}
