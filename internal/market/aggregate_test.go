package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		text string
		want float64
		ok   bool
	}{
		{"$28.50", 28.50, true},
		{"$1,250.00", 1250.00, true},
		{"£15", 15, true},
		{"€99.99", 99.99, true},
		{"S/. 1,200.00", 1200.00, true},
		{"$28.50 to $35.00", 28.50, true}, // ranges take the lower bound
		{"Free shipping", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParsePrice(tc.text)
		assert.Equal(t, tc.ok, ok, "text %q", tc.text)
		assert.Equal(t, tc.want, got, "text %q", tc.text)
	}
}

func TestAggregate_Statistics(t *testing.T) {
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	listings := []Listing{
		{Title: "a", Price: 20.00, Sold: true},
		{Title: "b", Price: 25.00, Sold: true},
		{Title: "c", Price: 28.50, Sold: false},
		{Title: "d", Price: 30.00, Sold: true},
		{Title: "e", Price: 40.00, Sold: true},
	}

	snapshot := Aggregate(listings, now)

	require.NotNil(t, snapshot.MedianPrice)
	assert.Equal(t, 28.50, *snapshot.MedianPrice)
	assert.Equal(t, 28.70, *snapshot.AveragePrice)
	assert.Equal(t, 20.00, *snapshot.MinPrice)
	assert.Equal(t, 40.00, *snapshot.MaxPrice)
	assert.Equal(t, 5, snapshot.SampleSize)
	assert.Equal(t, 4, snapshot.SoldListings)
	assert.Equal(t, 1, snapshot.ActiveListings)
	assert.False(t, snapshot.LowConfidence)
	assert.Equal(t, now, snapshot.CollectedAt)
}

func TestAggregate_ThinSampleIsLowConfidence(t *testing.T) {
	snapshot := Aggregate([]Listing{
		{Price: 10.00, Sold: true},
		{Price: 12.00, Sold: true},
	}, time.Now())

	assert.Equal(t, 2, snapshot.SampleSize)
	assert.True(t, snapshot.LowConfidence)
}

func TestAggregate_EvenSampleMedianAveragesMiddlePair(t *testing.T) {
	snapshot := Aggregate([]Listing{
		{Price: 10.00},
		{Price: 20.00},
		{Price: 30.00},
		{Price: 44.00},
	}, time.Now())

	require.NotNil(t, snapshot.MedianPrice)
	assert.Equal(t, 25.00, *snapshot.MedianPrice)
}

func TestAggregate_Empty(t *testing.T) {
	snapshot := Aggregate(nil, time.Now())

	assert.Equal(t, 0, snapshot.SampleSize)
	assert.True(t, snapshot.LowConfidence)
	assert.Nil(t, snapshot.MedianPrice)
	assert.Nil(t, snapshot.AveragePrice)
	assert.Nil(t, snapshot.MinPrice)
	assert.Nil(t, snapshot.MaxPrice)
	assert.False(t, snapshot.HasData())
}

func TestAggregate_SkipsUnpricedListings(t *testing.T) {
	snapshot := Aggregate([]Listing{
		{Title: "priced", Price: 19.99, Sold: true},
		{Title: "unpriced", Price: 0},
	}, time.Now())

	assert.Equal(t, 1, snapshot.SampleSize)
}

func TestNormalizeTermAndCacheKey(t *testing.T) {
	assert.Equal(t, "nike sneakers", NormalizeTerm("  Nike   Sneakers "))
	assert.Equal(t, "market_data:nike sneakers", CacheKey("Nike Sneakers"))
}

func TestSearchURL(t *testing.T) {
	u := SearchURL("nike air max 90")

	assert.Contains(t, u, "https://www.ebay.com/sch/i.html?")
	assert.Contains(t, u, "_nkw=nike+air+max+90")
	assert.Contains(t, u, "LH_Sold=1")
	assert.Contains(t, u, "LH_Complete=1")
	assert.Contains(t, u, "_ipg=60")
}

func TestScraper_ToListings(t *testing.T) {
	s := NewScraper(DefaultScraperConfig())

	raw := []rawListing{
		{Title: "Nike Air Max", PriceText: "$45.00", Condition: "Pre-owned", Sold: true},
		{Title: "No price card", PriceText: "see description"},
		{Title: "Nike Air Max 90", PriceText: "$52.50", Sold: false},
	}

	listings := s.toListings(raw)
	require.Len(t, listings, 2)
	assert.Equal(t, 45.00, listings[0].Price)
	assert.True(t, listings[0].Sold)
	assert.Equal(t, 52.50, listings[1].Price)
}

func TestScraper_ToListingsRespectsMax(t *testing.T) {
	cfg := DefaultScraperConfig()
	cfg.MaxListings = 2
	s := NewScraper(cfg)

	raw := []rawListing{
		{Title: "a", PriceText: "$1.00"},
		{Title: "b", PriceText: "$2.00"},
		{Title: "c", PriceText: "$3.00"},
	}

	assert.Len(t, s.toListings(raw), 2)
}
