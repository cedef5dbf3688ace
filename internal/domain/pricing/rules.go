package pricing

import (
	"fmt"
	"math"
)

// Rule thresholds. LowSellThrough is 0.30 on every path; the value is
// intentionally shared between the combined and internal-only states (see
// DESIGN.md for the threshold decision).
const (
	HighSellThrough    = 0.70
	LowSellThrough     = 0.30
	StaleShelfDays     = 60
	FreshShelfDays     = 30
	LowMarketSample    = 5
	DeepMarketSample   = 20
	PriceVarianceAlert = 0.30
)

// RuleEngine produces deterministic, auditable price recommendations from
// explicit thresholds. It is the fallback whenever the statistical predictor
// is unavailable, the derived confidence is too low, or internal data is
// missing.
type RuleEngine struct{}

// Recommend runs the four-state rule machine over the available sources.
// Warnings accumulated by the caller (e.g. a failed model invocation) are
// carried through into the response.
func (RuleEngine) Recommend(upc string, market *MarketSnapshot, internal *InternalRecord, warnings []string) Recommendation {
	switch {
	case market == nil && internal == nil:
		return noDataRecommendation(upc, warnings)
	case internal == nil:
		return marketOnlyRecommendation(upc, market, warnings)
	case market == nil:
		return internalOnlyRecommendation(upc, internal, warnings)
	default:
		return combinedRecommendation(upc, market, internal, warnings)
	}
}

func noDataRecommendation(upc string, warnings []string) Recommendation {
	return Recommendation{
		UPC:               upc,
		RecommendedPrice:  0.0,
		InternalWeighting: 0.5,
		ConfidenceScore:   0,
		Rationale:         "No market or internal data available. Cannot generate recommendation.",
		Warnings:          append(warnings, "No data available for this UPC"),
		Method:            MethodNoData,
	}
}

func marketOnlyRecommendation(upc string, market *MarketSnapshot, warnings []string) Recommendation {
	var confidence int
	if market.SampleSize < LowMarketSample {
		warnings = append(warnings, fmt.Sprintf(
			"Low market sample size (%d). Recommendation may not be reliable.", market.SampleSize))
		confidence = max(20, market.SampleSize*10)
	} else {
		confidence = min(75, 50+market.SampleSize*2)
	}

	// Median is more robust than average against outlier listings.
	price := round2(market.Price())

	medianStr := "N/A"
	if market.MedianPrice != nil {
		medianStr = fmt.Sprintf("$%.2f", *market.MedianPrice)
	}
	rationale := fmt.Sprintf(
		"Based on market data only. Median market price: %s from %d listings. "+
			"No internal data available for comparison.",
		medianStr, market.SampleSize)

	return Recommendation{
		UPC:               upc,
		RecommendedPrice:  price,
		InternalWeighting: 0.0,
		ConfidenceScore:   confidence,
		Rationale:         rationale,
		Market:            market,
		Warnings:          warnings,
		Method:            MethodMarketOnly,
	}
}

func internalOnlyRecommendation(upc string, internal *InternalRecord, warnings []string) Recommendation {
	warnings = append(warnings, "No market data available. Using internal data only.")

	price := internal.InternalPrice
	rationale := fmt.Sprintf("Based on internal data only ($%.2f).", internal.InternalPrice)

	var confidence int
	switch {
	case internal.SellThroughRate >= HighSellThrough:
		rationale += fmt.Sprintf(
			" High sell-through rate (%.2f) indicates current price is working well.",
			internal.SellThroughRate)
		confidence = 70
	case internal.DaysOnShelf > StaleShelfDays:
		price = round2(internal.InternalPrice * 0.90)
		rationale += fmt.Sprintf(
			" Product has been on shelf for %d days. Suggesting 10%% price reduction to $%.2f.",
			internal.DaysOnShelf, price)
		confidence = 60
	default:
		rationale += fmt.Sprintf(
			" Moderate sell-through (%.2f). Maintaining current price.",
			internal.SellThroughRate)
		confidence = 65
	}

	return Recommendation{
		UPC:               upc,
		RecommendedPrice:  round2(price),
		InternalWeighting: 1.0,
		ConfidenceScore:   confidence,
		Rationale:         rationale,
		Internal:          internal,
		Warnings:          warnings,
		Method:            MethodInternalOnly,
	}
}

func combinedRecommendation(upc string, market *MarketSnapshot, internal *InternalRecord, warnings []string) Recommendation {
	weighting := 0.5
	confidence := 50

	switch {
	case internal.SellThroughRate >= HighSellThrough:
		weighting += 0.20
		confidence += 15
	case internal.SellThroughRate < LowSellThrough:
		weighting -= 0.15
		confidence -= 5
	}

	switch {
	case internal.DaysOnShelf > StaleShelfDays:
		weighting -= 0.15
		confidence -= 10
	case internal.DaysOnShelf < FreshShelfDays:
		weighting += 0.05
		confidence += 5
	}

	switch {
	case market.SampleSize < LowMarketSample:
		weighting += 0.20
		confidence -= 15
		warnings = append(warnings, fmt.Sprintf("Low market sample size (%d).", market.SampleSize))
	case market.SampleSize > DeepMarketSample:
		weighting -= 0.10
		confidence += 10
	}

	weighting = math.Max(0.0, math.Min(1.0, weighting))
	confidence = max(0, min(100, confidence))

	marketPrice := market.Price()
	internalPrice := internal.InternalPrice
	price := round2(weighting*internalPrice + (1-weighting)*marketPrice)

	if marketPrice > 0 && math.Abs(internalPrice-marketPrice)/marketPrice > PriceVarianceAlert {
		warnings = append(warnings, fmt.Sprintf(
			"Large price difference between internal ($%.2f) and market ($%.2f) pricing.",
			internalPrice, marketPrice))
	}

	var weightDesc string
	switch {
	case weighting > 0.65:
		weightDesc = fmt.Sprintf("Strong emphasis on internal data (%.0f%% weight)", weighting*100)
	case weighting < 0.35:
		weightDesc = fmt.Sprintf("Strong emphasis on market data (%.0f%% weight)", (1-weighting)*100)
	default:
		weightDesc = fmt.Sprintf("Balanced: %.0f%% internal, %.0f%% market", weighting*100, (1-weighting)*100)
	}

	rationale := fmt.Sprintf(
		"%s. Internal: $%.2f, sell-through: %.2f. Market: median $%.2f from %d listings. Recommended: $%.2f.",
		weightDesc, internalPrice, internal.SellThroughRate, marketPrice, market.SampleSize, price)

	return Recommendation{
		UPC:               upc,
		RecommendedPrice:  price,
		InternalWeighting: weighting,
		ConfidenceScore:   confidence,
		Rationale:         rationale,
		Market:            market,
		Internal:          internal,
		Warnings:          warnings,
		Method:            MethodRuleBased,
	}
}
