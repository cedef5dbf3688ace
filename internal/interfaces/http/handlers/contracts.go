package handlers

import (
	"time"

	"priceintel/internal/domain/pricing"
)

// PriceRequest is the POST /price-recommendation body. InternalData, when
// present, replaces the sales history lookup with caller-supplied figures.
type PriceRequest struct {
	UPC          string            `json:"upc"`
	InternalData *InternalOverride `json:"internal_data,omitempty"`
}

// InternalOverride mirrors the aggregated internal sales shape.
type InternalOverride struct {
	InternalPrice   float64 `json:"internal_price"`
	SellThroughRate float64 `json:"sell_through_rate"`
	DaysOnShelf     int     `json:"days_on_shelf"`
	Category        string  `json:"category,omitempty"`
	SampleSize      int     `json:"sample_size"`
}

// toRecord converts the override to the engine's internal record shape.
// A nil override yields nil, which triggers the sales history lookup.
func (o *InternalOverride) toRecord() *pricing.InternalRecord {
	if o == nil {
		return nil
	}
	return &pricing.InternalRecord{
		InternalPrice:   o.InternalPrice,
		SellThroughRate: o.SellThroughRate,
		DaysOnShelf:     o.DaysOnShelf,
		Category:        o.Category,
		SampleSize:      o.SampleSize,
	}
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports service liveness and backend wiring.
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	UptimeSec int64             `json:"uptime_seconds"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
}

// CacheStatsResponse reports hit counters for the market data cache.
type CacheStatsResponse struct {
	Backend string  `json:"backend"`
	Hits    float64 `json:"hits"`
	Misses  float64 `json:"misses"`
}

// CacheClearResponse acknowledges a cache flush.
type CacheClearResponse struct {
	Status string `json:"status"`
}
