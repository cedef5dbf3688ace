// Package application orchestrates a price recommendation request end to
// end: UPC validation, data source fetches, the pricing decision, and the
// audit trail.
package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"priceintel/internal/domain/pricing"
	"priceintel/internal/internaldata"
	"priceintel/internal/market"
	"priceintel/internal/metrics"
	"priceintel/internal/upc"
)

// Request is one recommendation lookup. UPC may be a UPC code or a free-text
// product search term. Internal, when set, overrides the sales history
// search with caller-supplied figures.
type Request struct {
	UPC      string
	Internal *pricing.InternalRecord
}

// Recommender wires the market provider, the internal sales store, and the
// decision engine. Either data source may be nil when that backend is not
// configured.
type Recommender struct {
	market  market.Provider
	sales   internaldata.Store
	engine  *pricing.Engine
	metrics *metrics.Registry
}

func NewRecommender(m market.Provider, sales internaldata.Store, engine *pricing.Engine, reg *metrics.Registry) *Recommender {
	return &Recommender{market: m, sales: sales, engine: engine, metrics: reg}
}

// Recommend gathers both data sources for the term and runs the decision
// engine. A string that fails UPC validation is searched as free text, so
// only empty input is an error; data source failures degrade to warnings.
func (r *Recommender) Recommend(ctx context.Context, req Request) (pricing.Recommendation, error) {
	code := strings.TrimSpace(req.UPC)
	if code == "" {
		return pricing.Recommendation{}, fmt.Errorf("search term: %w", upc.ErrEmptyCode)
	}
	if validated, err := upc.Validate(code); err == nil {
		code = validated.Value
	} else {
		log.Info().Str("term", code).Err(err).Msg("Not a valid UPC, searching as free text")
	}

	var warnings []string
	var err error

	internal := req.Internal
	if internal == nil && r.sales != nil {
		internal, err = r.sales.Search(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("upc", code).Msg("Internal data lookup failed")
			warnings = append(warnings, fmt.Sprintf("Internal data lookup failed: %v", err))
			internal = nil
		}
	}

	var snapshot *pricing.MarketSnapshot
	if r.market != nil {
		snapshot, err = r.market.Fetch(ctx, code)
		if err != nil {
			log.Warn().Err(err).Str("upc", code).Msg("Market data fetch failed")
			r.metrics.MarketFetchError()
			warnings = append(warnings, fmt.Sprintf("Market data unavailable: %v", err))
			snapshot = nil
		}
	}

	rec := r.engine.Recommend(code, snapshot, internal)
	if len(warnings) > 0 {
		rec.Warnings = append(warnings, rec.Warnings...)
	}

	r.metrics.ObserveRecommendation(rec.Method, rec.ConfidenceScore)

	log.Info().
		Str("upc", code).
		Str("method", rec.Method).
		Float64("price", rec.RecommendedPrice).
		Int("confidence", rec.ConfidenceScore).
		Bool("has_market", snapshot.HasData()).
		Bool("has_internal", internal != nil).
		Msg("Price recommendation")

	return rec, nil
}
