package internaldata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRows_PhraseMatchWins(t *testing.T) {
	matched := matchRows(sampleRows(), "Sneakers")
	require.Len(t, matched, 2)
	assert.Equal(t, "A1", matched[0].ItemID)
	assert.Equal(t, "A2", matched[1].ItemID)
}

func TestMatchRows_WordFallback(t *testing.T) {
	// No row contains the full phrase, but "nike" and "running" each hit.
	matched := matchRows(sampleRows(), "nike running jacket")
	require.Len(t, matched, 3)
	for _, row := range matched {
		assert.Equal(t, "Nike", row.Brand)
	}
}

func TestMatchRows_SingleUsableWordStillSearchesAllFields(t *testing.T) {
	// One word is too short for the word pass, but the other still runs
	// against brand, department, category and subcategory.
	matched := matchRows(sampleRows(), "nike tv")
	require.Len(t, matched, 3)
	for _, row := range matched {
		assert.Equal(t, "Nike", row.Brand)
	}

	matched = matchRows(sampleRows(), "footwear tv")
	require.Len(t, matched, 3)
	for _, row := range matched {
		assert.Equal(t, "Footwear", row.Department)
	}
}

func TestMatchRows_BrandFallback(t *testing.T) {
	// No word survives the length filter, so the unmatched phrase lands on
	// the brand-only pass with the first word.
	rows := []SaleRow{
		{ItemID: "C1", Brand: "Gap", Category: "Jackets"},
		{ItemID: "C2", Brand: "Columbia", Category: "Jackets"},
	}

	matched := matchRows(rows, "ga xx")
	require.Len(t, matched, 1)
	assert.Equal(t, "C1", matched[0].ItemID)
}

func TestMatchRows_NoMatch(t *testing.T) {
	assert.Nil(t, matchRows(sampleRows(), "vintage typewriter"))
	assert.Nil(t, matchRows(sampleRows(), "   "))
}

func TestMatchRows_CaseInsensitive(t *testing.T) {
	matched := matchRows(sampleRows(), "NIKE")
	assert.Len(t, matched, 3)
}

func TestSearchWords_FiltersShortWords(t *testing.T) {
	assert.Equal(t, []string{"air", "max"}, searchWords("air max 90"))
	assert.Nil(t, searchWords("a b"))
}
