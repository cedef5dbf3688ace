package pricing

import (
	"math"
	"time"
)

// Prediction methods reported in Recommendation.Method
const (
	MethodML           = "ml"
	MethodRuleBased    = "rule_based"
	MethodMarketOnly   = "market_only"
	MethodInternalOnly = "internal_only"
	MethodNoData       = "no_data"
)

// MarketSnapshot summarizes external marketplace pricing for one search term
// at one point in time. Price fields are nil when no listings were found;
// SampleSize == 0 implies nil prices and LowConfidence == true.
type MarketSnapshot struct {
	MedianPrice    *float64          `json:"median_price,omitempty"`
	AveragePrice   *float64          `json:"average_price,omitempty"`
	MinPrice       *float64          `json:"min_price,omitempty"`
	MaxPrice       *float64          `json:"max_price,omitempty"`
	SampleSize     int               `json:"sample_size"`
	ActiveListings int               `json:"active_listings_count"`
	SoldListings   int               `json:"sold_listings_count"`
	LowConfidence  bool              `json:"low_confidence"`
	CollectedAt    time.Time         `json:"collected_at"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Price returns the representative market price: median preferred over
// average, 0 when neither is available.
func (m *MarketSnapshot) Price() float64 {
	if m == nil {
		return 0
	}
	if m.MedianPrice != nil && *m.MedianPrice > 0 {
		return *m.MedianPrice
	}
	if m.AveragePrice != nil && *m.AveragePrice > 0 {
		return *m.AveragePrice
	}
	return 0
}

// HasData reports whether the snapshot carries usable pricing statistics.
func (m *MarketSnapshot) HasData() bool {
	return m != nil && m.SampleSize > 0
}

// InternalMeta carries auxiliary aggregation detail for an InternalRecord.
type InternalMeta struct {
	ProductionPrice float64  `json:"production_price,omitempty"`
	SoldItems       int      `json:"sold_items"`
	UnsoldItems     int      `json:"unsold_items"`
	Departments     []string `json:"departments,omitempty"`
	Brands          []string `json:"brands,omitempty"`
	Subcategories   []string `json:"subcategories,omitempty"`
}

// InternalRecord aggregates internal sales performance for a matched set of
// inventory items. InternalPrice prefers the realized sale price, falling
// back to production price when nothing in the group has sold.
type InternalRecord struct {
	InternalPrice   float64      `json:"internal_price"`
	SellThroughRate float64      `json:"sell_through_rate"`
	DaysOnShelf     int          `json:"days_on_shelf"`
	Category        string       `json:"category"`
	SampleSize      int          `json:"sample_size"`
	Meta            InternalMeta `json:"metadata"`
}

// Recommendation is the pricing core's output. It is always well formed:
// missing data degrades confidence and adds warnings, it never produces an
// error surface.
type Recommendation struct {
	UPC              string  `json:"upc"`
	RecommendedPrice float64 `json:"recommended_price"`

	// InternalWeighting is the blend ratio between internal and market
	// prices (1.0 = pure internal, 0.0 = pure market). On the ML path it is
	// reported as 0.5 and carries no meaning; the model does not expose a
	// blend ratio.
	InternalWeighting float64 `json:"internal_vs_market_weighting"`

	ConfidenceScore   int                `json:"confidence_score"`
	Rationale         string             `json:"rationale"`
	Market            *MarketSnapshot    `json:"market_snapshot,omitempty"`
	Internal          *InternalRecord    `json:"internal_record,omitempty"`
	Warnings          []string           `json:"warnings"`
	FeatureImportance map[string]float64 `json:"feature_importance,omitempty"`
	Method            string             `json:"method"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Float is a convenience for building optional price fields.
func Float(v float64) *float64 { return &v }
