package pricing

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// LowConfidenceThreshold is the minimum derived confidence required before
// the engine trusts the statistical predictor over the rule fallback.
const LowConfidenceThreshold = 0.30

// Engine is the pricing decision core: it derives features and confidence
// from the two data sources, picks the ML or rule path, and normalizes the
// output into a single Recommendation contract. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	predictor Predictor
	rules     RuleEngine
}

// NewEngine constructs the decision core around a predictor. A nil predictor
// is treated as unavailable.
func NewEngine(predictor Predictor) *Engine {
	if predictor == nil {
		predictor = UnavailablePredictor{}
	}
	return &Engine{predictor: predictor}
}

// Recommend produces a price recommendation for a UPC or free-text search
// term from already-materialized data sources. It never fails: missing data
// and model errors degrade to rule-based output with warnings.
func (e *Engine) Recommend(upcOrTerm string, market *MarketSnapshot, internal *InternalRecord) Recommendation {
	if market == nil && internal == nil {
		return finalize(e.rules.Recommend(upcOrTerm, nil, nil, nil))
	}

	fv, confidence := DeriveFeatures(market, internal)

	var warnings []string
	if e.useML(confidence, internal) {
		rec, err := e.mlRecommend(upcOrTerm, fv, confidence, market, internal)
		if err == nil {
			return finalize(rec)
		}
		log.Warn().Err(err).Str("term", upcOrTerm).Msg("ML prediction failed, falling back to rules")
		warnings = append(warnings, fmt.Sprintf("ML prediction failed: %v. Falling back to rules.", err))
	}

	return finalize(e.rules.Recommend(upcOrTerm, market, internal, warnings))
}

// useML gates the statistical path: the model must be loaded, the derived
// confidence must clear the threshold, and internal data must be present
// because the model is trained on internal-data-bearing vectors.
func (e *Engine) useML(confidence float64, internal *InternalRecord) bool {
	return e.predictor.Available() &&
		confidence >= LowConfidenceThreshold &&
		internal != nil
}

func (e *Engine) mlRecommend(upc string, fv FeatureVector, confidence float64, market *MarketSnapshot, internal *InternalRecord) (Recommendation, error) {
	price, importances, err := e.predictor.Predict(fv)
	if err != nil {
		return Recommendation{}, err
	}
	price = round2(math.Max(0, price))

	parts := []string{
		fmt.Sprintf("ML model prediction: $%.2f", price),
		fmt.Sprintf("Confidence: %.0f%%", confidence*100),
	}

	if top := topImportances(importances, 3); len(top) > 0 {
		factors := make([]string, len(top))
		for i, f := range top {
			factors[i] = fmt.Sprintf("%s (%.2f)", f.Name, f.Importance)
		}
		parts = append(parts, "Top factors: "+strings.Join(factors, ", "))
	}

	if internal != nil {
		parts = append(parts, fmt.Sprintf("Internal: $%.2f, sell-through: %.2f",
			internal.InternalPrice, internal.SellThroughRate))
	}
	if market.HasData() {
		parts = append(parts, fmt.Sprintf("Market: $%.2f median from %d listings",
			market.Price(), market.SampleSize))
	}

	return Recommendation{
		UPC:              upc,
		RecommendedPrice: price,
		// Not a real blend ratio on the ML path; see field doc.
		InternalWeighting: 0.5,
		ConfidenceScore:   int(math.Round(confidence * 100)),
		Rationale:         strings.Join(parts, " | "),
		Market:            market,
		Internal:          internal,
		FeatureImportance: importances,
		Method:            MethodML,
	}, nil
}

// finalize enforces response invariants shared by every path.
func finalize(rec Recommendation) Recommendation {
	rec.RecommendedPrice = round2(math.Max(0, rec.RecommendedPrice))
	if rec.Warnings == nil {
		rec.Warnings = []string{}
	}
	return rec
}
