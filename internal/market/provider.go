// Package market fetches and aggregates external marketplace pricing for a
// search term. The pricing core never calls into this package; callers fetch
// a snapshot first and hand it to the core, mapping any failure here to
// "no market data".
package market

import (
	"context"
	"strings"

	"priceintel/internal/domain/pricing"
)

// Provider fetches a marketplace pricing snapshot for a search term.
type Provider interface {
	Fetch(ctx context.Context, term string) (*pricing.MarketSnapshot, error)
}

// CacheKey builds the cache key for a search term. Terms are normalized so
// "Nike Sneakers" and "nike sneakers" share an entry.
func CacheKey(term string) string {
	return "market_data:" + NormalizeTerm(term)
}

// NormalizeTerm lowercases and collapses whitespace in a search term.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}
