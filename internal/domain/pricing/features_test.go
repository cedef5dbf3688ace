package pricing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarket() *MarketSnapshot {
	return &MarketSnapshot{
		MedianPrice:  Float(28.50),
		AveragePrice: Float(29.00),
		MinPrice:     Float(20.00),
		MaxPrice:     Float(40.00),
		SampleSize:   15,
		SoldListings: 15,
		CollectedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testInternal() *InternalRecord {
	return &InternalRecord{
		InternalPrice:   30.00,
		SellThroughRate: 0.75,
		DaysOnShelf:     30,
		Category:        "Shoes",
		SampleSize:      50,
		Meta:            InternalMeta{SoldItems: 35, UnsoldItems: 15},
	}
}

func TestDeriveFeatures_MarketBlock(t *testing.T) {
	fv, _ := DeriveFeatures(testMarket(), nil)

	assert.Equal(t, 28.50, fv[FeatMarketMedianPrice])
	assert.Equal(t, 20.00, fv[FeatMarketMinPrice])
	assert.Equal(t, 40.00, fv[FeatMarketMaxPrice])
	assert.Equal(t, 15.0, fv[FeatMarketSampleSize])
	assert.Equal(t, 20.00, fv[FeatMarketPriceRange])
	assert.Equal(t, 5.00, fv[FeatMarketPriceStd])
	assert.Equal(t, 1.0, fv[FeatHasMarketData])

	// Internal block must be fully zeroed without internal data.
	assert.Equal(t, 0.0, fv[FeatInternalPrice])
	assert.Equal(t, 0.0, fv[FeatHasInternalData])
	assert.Equal(t, 0.0, fv[FeatCategoryShoes])

	// Interaction defaults when only one source is present.
	assert.Equal(t, 1.0, fv[FeatPriceVsMarketRatio])
	assert.Equal(t, 0.0, fv[FeatDemandSignal])
}

func TestDeriveFeatures_EmptyMarketSampleTreatedAsAbsent(t *testing.T) {
	market := &MarketSnapshot{SampleSize: 0, LowConfidence: true}
	fv, _ := DeriveFeatures(market, nil)

	assert.Equal(t, 0.0, fv[FeatHasMarketData])
	assert.Equal(t, 0.0, fv[FeatMarketMedianPrice])
}

func TestDeriveFeatures_InternalBlock(t *testing.T) {
	fv, _ := DeriveFeatures(nil, testInternal())

	assert.Equal(t, 30.00, fv[FeatInternalPrice])
	assert.Equal(t, 0.75, fv[FeatSellThroughRate])
	assert.Equal(t, 30.0, fv[FeatDaysOnShelf])
	assert.Equal(t, 50.0, fv[FeatInternalSampleSize])
	assert.Equal(t, 1.0, fv[FeatHasInternalData])
	assert.InDelta(t, 35.0/30.0, fv[FeatInventoryVelocity], 1e-12)
	assert.Equal(t, 1.0, fv[FeatCategoryShoes])
	assert.Equal(t, 0.0, fv[FeatCategoryTops])
	assert.Equal(t, 0.0, fv[FeatHasMarketData])
}

func TestDeriveFeatures_CategoryIndicators(t *testing.T) {
	cases := []struct {
		category string
		index    int
	}{
		{"Running Shoes", FeatCategoryShoes},
		{"Tops", FeatCategoryTops},
		{"T-Shirt", FeatCategoryTops},
		{"Bottoms", FeatCategoryBottoms},
		{"Cargo Pants", FeatCategoryBottoms},
		{"Denim Jacket", FeatCategoryOuterwear},
		{"Winter Coat", FeatCategoryOuterwear},
	}

	for _, tc := range cases {
		internal := testInternal()
		internal.Category = tc.category
		fv, _ := DeriveFeatures(nil, internal)
		assert.Equal(t, 1.0, fv[tc.index], "category %q should set %s", tc.category, FeatureName(tc.index))
	}

	internal := testInternal()
	internal.Category = "Accessories"
	fv, _ := DeriveFeatures(nil, internal)
	for _, i := range []int{FeatCategoryShoes, FeatCategoryTops, FeatCategoryBottoms, FeatCategoryOuterwear} {
		assert.Equal(t, 0.0, fv[i])
	}
}

func TestDeriveFeatures_InteractionBlock(t *testing.T) {
	fv, _ := DeriveFeatures(testMarket(), testInternal())

	assert.InDelta(t, 30.0/28.5, fv[FeatPriceVsMarketRatio], 1e-12)
	assert.InDelta(t, 0.75/15.0, fv[FeatDemandSignal], 1e-12)
}

func TestDeriveFeatures_DataQualityScore(t *testing.T) {
	fv, _ := DeriveFeatures(testMarket(), testInternal())
	// market 15/10 capped at 1, internal 50/50 = 1 -> average 1.
	assert.Equal(t, 1.0, fv[FeatDataQualityScore])

	market := testMarket()
	market.SampleSize = 5
	internal := testInternal()
	internal.SampleSize = 25
	fv, _ = DeriveFeatures(market, internal)
	assert.InDelta(t, (0.5+0.5)/2, fv[FeatDataQualityScore], 1e-12)
}

func TestDeriveFeatures_Idempotent(t *testing.T) {
	market, internal := testMarket(), testInternal()

	fv1, conf1 := DeriveFeatures(market, internal)
	fv2, conf2 := DeriveFeatures(market, internal)

	assert.Equal(t, fv1, fv2)
	assert.Equal(t, conf1, conf2)
}

func TestConfidence_BothSources(t *testing.T) {
	_, conf := DeriveFeatures(testMarket(), testInternal())

	want := 0.45*(1-math.Exp(-15.0/15.0)) + 0.45*(1-math.Exp(-50.0/50.0)) + 0.10
	assert.InDelta(t, want, conf, 1e-9)
	assert.GreaterOrEqual(t, conf, LowConfidenceThreshold)
}

func TestConfidence_MarketVariancePenalty(t *testing.T) {
	// CV just over 0.5: std = range/4, so range > 2*median.
	market := testMarket()
	market.MinPrice = Float(5.00)
	market.MaxPrice = Float(70.00) // range 65, std 16.25, CV 0.57
	_, penalized := DeriveFeatures(market, nil)

	_, base := DeriveFeatures(testMarket(), nil)
	assert.InDelta(t, base*0.7, penalized, 1e-9)

	// CV between 0.3 and 0.5.
	market = testMarket()
	market.MinPrice = Float(10.00)
	market.MaxPrice = Float(50.00) // range 40, std 10, CV 0.35
	_, penalized = DeriveFeatures(market, nil)
	assert.InDelta(t, base*0.85, penalized, 1e-9)
}

func TestConfidence_ExtremeSellThroughPenalty(t *testing.T) {
	internal := testInternal()
	internal.SellThroughRate = 0.5
	_, base := DeriveFeatures(nil, internal)

	internal.SellThroughRate = 0.95
	_, high := DeriveFeatures(nil, internal)
	assert.InDelta(t, base*0.9, high, 1e-9)

	internal.SellThroughRate = 0.1
	_, low := DeriveFeatures(nil, internal)
	assert.InDelta(t, base*0.9, low, 1e-9)
}

func TestConfidence_NeverExceedsCap(t *testing.T) {
	for _, n := range []int{0, 1, 10, 100, 1000, 100000} {
		market := testMarket()
		market.SampleSize = n
		internal := testInternal()
		internal.SampleSize = n

		_, conf := DeriveFeatures(market, internal)
		assert.LessOrEqual(t, conf, 0.95, "sample size %d", n)
		assert.GreaterOrEqual(t, conf, 0.0)
	}
}

func TestConfidence_ZeroWithoutData(t *testing.T) {
	_, conf := DeriveFeatures(nil, nil)
	assert.Equal(t, 0.0, conf)
}

func TestFeatureNames_StableOrder(t *testing.T) {
	names := FeatureNames()
	require.Len(t, names, NumFeatures)

	// The ordering is a trained-model contract; spot-check the anchors.
	assert.Equal(t, "market_median_price", names[0])
	assert.Equal(t, "has_market_data", names[FeatHasMarketData])
	assert.Equal(t, "internal_price", names[FeatInternalPrice])
	assert.Equal(t, "price_confidence", names[NumFeatures-1])

	for i, name := range names {
		assert.Equal(t, name, FeatureName(i))
		assert.NotEmpty(t, name)
	}
}
