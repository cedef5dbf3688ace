package market

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"priceintel/internal/domain/pricing"
)

// lowSampleSize marks a snapshot as low confidence when fewer listings than
// this were found.
const lowSampleSize = 5

// Listing is one marketplace search result.
type Listing struct {
	Title     string
	Price     float64
	Condition string
	Sold      bool
}

// priceRe matches a currency-prefixed amount, tolerating S/., $, € and £
// plus thousands separators.
var priceRe = regexp.MustCompile(`[S$£€]/?\s*\.?\s*([\d,]+\.?\d*)`)

// ParsePrice extracts a numeric price from marketplace price text such as
// "$28.50" or "S/. 1,200.00". Returns 0, false when no amount is found.
func ParsePrice(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// Aggregate reduces raw listings into a MarketSnapshot. An empty listing set
// produces a snapshot with nil prices and LowConfidence set, which the rule
// engine treats as present-but-thin market data.
func Aggregate(listings []Listing, collectedAt time.Time) *pricing.MarketSnapshot {
	snapshot := &pricing.MarketSnapshot{
		CollectedAt:   collectedAt,
		LowConfidence: true,
	}

	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		if l.Price > 0 {
			prices = append(prices, l.Price)
		}
		if l.Sold {
			snapshot.SoldListings++
		} else {
			snapshot.ActiveListings++
		}
	}

	if len(prices) == 0 {
		snapshot.ActiveListings = 0
		snapshot.SoldListings = 0
		return snapshot
	}

	sort.Float64s(prices)

	snapshot.SampleSize = len(prices)
	snapshot.LowConfidence = len(prices) < lowSampleSize
	snapshot.MedianPrice = pricing.Float(round2(median(prices)))
	snapshot.AveragePrice = pricing.Float(round2(mean(prices)))
	snapshot.MinPrice = pricing.Float(round2(prices[0]))
	snapshot.MaxPrice = pricing.Float(round2(prices[len(prices)-1]))

	return snapshot
}

// median of a sorted slice, averaging the middle pair for even sizes.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
