package pricing

import (
	"math"
	"strings"
)

// Feature indices into a FeatureVector. The order is a wire contract: model
// artifacts are trained against vectors in exactly this order, so new
// features append at the end and nothing ever reorders.
const (
	FeatMarketMedianPrice = iota
	FeatMarketMinPrice
	FeatMarketMaxPrice
	FeatMarketSampleSize
	FeatMarketPriceRange
	FeatMarketPriceStd
	FeatHasMarketData
	FeatInternalPrice
	FeatSellThroughRate
	FeatDaysOnShelf
	FeatInternalSampleSize
	FeatHasInternalData
	FeatInventoryVelocity
	FeatCategoryShoes
	FeatCategoryTops
	FeatCategoryBottoms
	FeatCategoryOuterwear
	FeatPriceVsMarketRatio
	FeatDemandSignal
	FeatDataQualityScore
	FeatPriceConfidence
	NumFeatures
)

var featureNames = [NumFeatures]string{
	FeatMarketMedianPrice:  "market_median_price",
	FeatMarketMinPrice:     "market_min_price",
	FeatMarketMaxPrice:     "market_max_price",
	FeatMarketSampleSize:   "market_sample_size",
	FeatMarketPriceRange:   "market_price_range",
	FeatMarketPriceStd:     "market_price_std",
	FeatHasMarketData:      "has_market_data",
	FeatInternalPrice:      "internal_price",
	FeatSellThroughRate:    "sell_through_rate",
	FeatDaysOnShelf:        "days_on_shelf",
	FeatInternalSampleSize: "internal_sample_size",
	FeatHasInternalData:    "has_internal_data",
	FeatInventoryVelocity:  "inventory_velocity",
	FeatCategoryShoes:      "category_shoes",
	FeatCategoryTops:       "category_tops",
	FeatCategoryBottoms:    "category_bottoms",
	FeatCategoryOuterwear:  "category_outerwear",
	FeatPriceVsMarketRatio: "price_vs_market_ratio",
	FeatDemandSignal:       "demand_signal",
	FeatDataQualityScore:   "data_quality_score",
	FeatPriceConfidence:    "price_confidence",
}

// FeatureVector is a fixed-order numeric representation of one pricing
// request, derived deterministically from the two input sources.
type FeatureVector [NumFeatures]float64

// FeatureNames returns the ordered feature names matching FeatureVector
// indices.
func FeatureNames() []string {
	names := make([]string, NumFeatures)
	copy(names, featureNames[:])
	return names
}

// FeatureName returns the name of a single feature index, or "" if out of
// range.
func FeatureName(i int) string {
	if i < 0 || i >= NumFeatures {
		return ""
	}
	return featureNames[i]
}

// DeriveFeatures maps the two (possibly absent) data sources into a feature
// vector plus a confidence in [0, 0.95]. It is a pure function: identical
// inputs always produce identical output.
func DeriveFeatures(market *MarketSnapshot, internal *InternalRecord) (FeatureVector, float64) {
	var fv FeatureVector

	if market.HasData() {
		fv[FeatMarketMedianPrice] = deref(market.MedianPrice)
		fv[FeatMarketMinPrice] = deref(market.MinPrice)
		fv[FeatMarketMaxPrice] = deref(market.MaxPrice)
		fv[FeatMarketSampleSize] = float64(market.SampleSize)
		fv[FeatMarketPriceRange] = fv[FeatMarketMaxPrice] - fv[FeatMarketMinPrice]
		if fv[FeatMarketPriceRange] > 0 {
			// Crude range-to-stdev proxy assuming roughly normal prices.
			fv[FeatMarketPriceStd] = fv[FeatMarketPriceRange] / 4.0
		}
		fv[FeatHasMarketData] = 1.0
	}

	if internal != nil {
		fv[FeatInternalPrice] = internal.InternalPrice
		fv[FeatSellThroughRate] = internal.SellThroughRate
		fv[FeatDaysOnShelf] = float64(internal.DaysOnShelf)
		fv[FeatInternalSampleSize] = float64(internal.SampleSize)
		fv[FeatHasInternalData] = 1.0

		if internal.DaysOnShelf > 0 {
			fv[FeatInventoryVelocity] = float64(internal.Meta.SoldItems) /
				math.Max(float64(internal.DaysOnShelf), 1)
		}

		category := strings.ToLower(internal.Category)
		fv[FeatCategoryShoes] = indicator(strings.Contains(category, "shoe"))
		fv[FeatCategoryTops] = indicator(strings.Contains(category, "top") || strings.Contains(category, "shirt"))
		fv[FeatCategoryBottoms] = indicator(strings.Contains(category, "bottom") || strings.Contains(category, "pant"))
		fv[FeatCategoryOuterwear] = indicator(strings.Contains(category, "jacket") || strings.Contains(category, "coat"))
	}

	// Interaction features are only meaningful with both sources present.
	fv[FeatPriceVsMarketRatio] = 1.0
	if fv[FeatHasMarketData] == 1.0 && fv[FeatHasInternalData] == 1.0 {
		if fv[FeatMarketMedianPrice] > 0 {
			fv[FeatPriceVsMarketRatio] = fv[FeatInternalPrice] / fv[FeatMarketMedianPrice]
		}
		// High sell-through against thin market supply signals headroom.
		fv[FeatDemandSignal] = fv[FeatSellThroughRate] * (1.0 / math.Max(fv[FeatMarketSampleSize], 1.0))
	}

	marketQuality := math.Min(fv[FeatMarketSampleSize]/10.0, 1.0)
	internalQuality := math.Min(fv[FeatInternalSampleSize]/50.0, 1.0)
	fv[FeatDataQualityScore] = (marketQuality + internalQuality) / 2.0

	fv[FeatPriceConfidence] = dataConfidence(fv)

	return fv, fv[FeatPriceConfidence]
}

// dataConfidence estimates how trustworthy a recommendation built from this
// vector can be. Bounded at 0.95: pricing never claims certainty.
func dataConfidence(fv FeatureVector) float64 {
	confidence := 0.0

	if fv[FeatHasMarketData] == 1.0 {
		// Diminishing returns on sample size.
		marketConf := 0.45 * (1 - math.Exp(-fv[FeatMarketSampleSize]/15.0))

		// Penalize unstable markets via coefficient of variation.
		if fv[FeatMarketMedianPrice] > 0 {
			priceCV := fv[FeatMarketPriceStd] / fv[FeatMarketMedianPrice]
			switch {
			case priceCV > 0.5:
				marketConf *= 0.7
			case priceCV > 0.3:
				marketConf *= 0.85
			}
		}

		confidence += marketConf
	}

	if fv[FeatHasInternalData] == 1.0 {
		internalConf := 0.45 * (1 - math.Exp(-fv[FeatInternalSampleSize]/50.0))

		// Extreme sell-through rates are less informative about price.
		rate := fv[FeatSellThroughRate]
		if rate > 0.8 || rate < 0.2 {
			internalConf *= 0.9
		}

		confidence += internalConf
	}

	if fv[FeatHasMarketData] == 1.0 && fv[FeatHasInternalData] == 1.0 {
		confidence += 0.10
	}

	return math.Min(confidence, 0.95)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func indicator(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
