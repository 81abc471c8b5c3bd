package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/storyguard/internal/models"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		item     models.ContentItem
		expected []string
	}{
		{
			name:     "empty story yields no keywords",
			item:     models.ContentItem{},
			expected: nil,
		},
		{
			name:     "tags are lower-cased and trusted",
			item:     models.ContentItem{Tags: []string{"Bali", "Family Trip"}},
			expected: []string{"bali", "family trip"},
		},
		{
			name:     "blank tags are skipped",
			item:     models.ContentItem{Tags: []string{"", "  "}},
			expected: nil,
		},
		{
			name:     "title location adds category and term",
			item:     models.ContentItem{Title: "Exploring Ubud, Bali", Tags: []string{"bali"}},
			expected: []string{"bali", "ubud"},
		},
		{
			name:     "single body location term is not enough",
			item:     models.ContentItem{Body: "We flew into Denpasar and then drove for hours."},
			expected: nil,
		},
		{
			name:     "two body location terms add the location",
			item:     models.ContentItem{Body: "We flew into Denpasar and stayed in Canggu for a week."},
			expected: []string{"bali", "denpasar", "canggu"},
		},
		{
			name: "body location skipped when title already names one",
			item: models.ContentItem{
				Title: "Weekend in Jakarta",
				Body:  "Then Denpasar and Canggu.",
			},
			expected: []string{"jakarta"},
		},
		{
			name: "a location term tag does not block body inference",
			item: models.ContentItem{
				Tags: []string{"ubud"},
				Body: "Denpasar then Canggu",
			},
			expected: []string{"ubud", "bali", "denpasar", "canggu"},
		},
		{
			name:     "one body theme term is enough",
			item:     models.ContentItem{Body: "The warung on the corner was the best."},
			expected: []string{"culinary", "warung"},
		},
		{
			name:     "substring matches inside longer words are kept",
			item:     models.ContentItem{Title: "Balinese dance night"},
			expected: []string{"bali", "culture", "dance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.item)
			if tt.expected == nil {
				assert.Equal(t, 0, got.Len())
				return
			}
			assert.Equal(t, tt.expected, got.Keywords())
		})
	}
}

func TestExtractKeywordsIsDeterministic(t *testing.T) {
	item := models.ContentItem{
		Title: "Sunset surf at Uluwatu",
		Body:  "Then a temple ceremony and nasi goreng at a warung near Jimbaran.",
		Tags:  []string{"Bali"},
	}

	first := ExtractKeywords(item).Keywords()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, ExtractKeywords(item).Keywords())
	}
}

func TestKeywordSet(t *testing.T) {
	set := NewKeywordSet("bali", "ubud", "bali", "beach")

	assert.Equal(t, 3, set.Len())
	assert.True(t, set.Contains("ubud"))
	assert.False(t, set.Contains("jakarta"))
	assert.Equal(t, []string{"bali", "ubud"}, set.Head(2))
	assert.Equal(t, []string{"bali", "ubud", "beach"}, set.Head(10))

	data, err := set.MarshalJSON()
	assert.NoError(t, err)
	assert.JSONEq(t, `["bali","ubud","beach"]`, string(data))

	var empty KeywordSet
	data, err = empty.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDictionariesAreCopies(t *testing.T) {
	locations := LocationDictionary()
	locations[0].Terms[0] = "mutated"

	assert.Equal(t, "bali", LocationDictionary()[0].Terms[0])
	assert.True(t, IsLocationKeyword("bali"))
	assert.True(t, IsLocationKeyword("ubud"))
	assert.True(t, IsThemeKeyword("culinary"))
	assert.True(t, IsThemeKeyword("warung"))
	assert.False(t, IsThemeKeyword("bali"))
	assert.NotEmpty(t, ThemeDictionary())
}

func TestExtractKeywordsUsesTagsAsStored(t *testing.T) {
	keywords := ExtractKeywords(models.ContentItem{Tags: []string{" Bali ", "   ", "UBUD"}})

	assert.Equal(t, []string{" bali ", "ubud"}, keywords.Keywords())
	assert.False(t, keywords.Contains("bali"))
}
