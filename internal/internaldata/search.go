package internaldata

import "strings"

// minWordLen filters out noise words in the word-by-word fallback.
const minWordLen = 3

// matchStrategy selects rows for a search term. Strategies run in order
// until one yields a non-empty result.
type matchStrategy func(rows []SaleRow, term string) []SaleRow

// cascade is the fuzzy match order: exact phrase, then word-by-word, then
// brand-only on the first word.
var cascade = []matchStrategy{matchPhrase, matchWords, matchBrand}

// matchRows runs the fuzzy cascade over an in-memory row set.
func matchRows(rows []SaleRow, term string) []SaleRow {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	for _, strategy := range cascade {
		if matched := strategy(rows, term); len(matched) > 0 {
			return matched
		}
	}
	return nil
}

func matchPhrase(rows []SaleRow, term string) []SaleRow {
	var matched []SaleRow
	for _, row := range rows {
		if rowContains(row, term) {
			matched = append(matched, row)
		}
	}
	return matched
}

// matchWords runs on any multi-word term, matching each usable word against
// all four fields. Single-word terms skip straight to the brand pass.
func matchWords(rows []SaleRow, term string) []SaleRow {
	if len(strings.Fields(term)) < 2 {
		return nil
	}
	words := searchWords(term)
	if len(words) == 0 {
		return nil
	}

	var matched []SaleRow
	for _, row := range rows {
		for _, word := range words {
			if rowContains(row, word) {
				matched = append(matched, row)
				break
			}
		}
	}
	return matched
}

// matchBrand assumes the first word of a multi-word term is the brand.
func matchBrand(rows []SaleRow, term string) []SaleRow {
	words := strings.Fields(term)
	if len(words) == 0 {
		return nil
	}
	brand := words[0]

	var matched []SaleRow
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Brand), brand) {
			matched = append(matched, row)
		}
	}
	return matched
}

func rowContains(row SaleRow, needle string) bool {
	for _, field := range []string{row.Brand, row.Department, row.Category, row.Subcategory} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func searchWords(term string) []string {
	var words []string
	for _, w := range strings.Fields(term) {
		if len(w) >= minWordLen {
			words = append(words, w)
		}
	}
	return words
}
