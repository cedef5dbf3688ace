// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds all Prometheus metrics for the pricing service.
type Registry struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	Recommendations *prometheus.CounterVec
	Confidence      prometheus.Histogram
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	MarketFetchErrs prometheus.Counter
}

// NewRegistry creates and registers all service metrics.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "priceintel_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"route", "status"},
		),

		Recommendations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceintel_recommendations_total",
				Help: "Price recommendations produced, by prediction method",
			},
			[]string{"method"},
		),

		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "priceintel_recommendation_confidence",
				Help:    "Confidence score distribution (0-100)",
				Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceintel_cache_hits_total",
				Help: "Cache hits by cache type",
			},
			[]string{"cache_type"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "priceintel_cache_misses_total",
				Help: "Cache misses by cache type",
			},
			[]string{"cache_type"},
		),

		MarketFetchErrs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "priceintel_market_fetch_errors_total",
				Help: "Marketplace fetches that failed or were broken open",
			},
		),
	}

	r.registry.MustRegister(
		r.RequestDuration,
		r.Recommendations,
		r.Confidence,
		r.CacheHits,
		r.CacheMisses,
		r.MarketFetchErrs,
	)
	return r
}

// Handler serves the /metrics endpoint for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request.
func (r *Registry) ObserveRequest(route, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.RequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}

// ObserveRecommendation records one produced recommendation.
func (r *Registry) ObserveRecommendation(method string, confidence int) {
	if r == nil {
		return
	}
	r.Recommendations.WithLabelValues(method).Inc()
	r.Confidence.Observe(float64(confidence))
}

// CacheHit increments the hit counter for a cache type. Safe on nil.
func (r *Registry) CacheHit(cacheType string) {
	if r == nil {
		return
	}
	r.CacheHits.WithLabelValues(cacheType).Inc()
}

// CacheMiss increments the miss counter for a cache type. Safe on nil.
func (r *Registry) CacheMiss(cacheType string) {
	if r == nil {
		return
	}
	r.CacheMisses.WithLabelValues(cacheType).Inc()
}

// MarketFetchError counts a failed marketplace fetch. Safe on nil.
func (r *Registry) MarketFetchError() {
	if r == nil {
		return
	}
	r.MarketFetchErrs.Inc()
}

// CacheStats reads the current hit/miss totals for a cache type from the
// gathered metric families.
func (r *Registry) CacheStats(cacheType string) (hits, misses float64) {
	if r == nil {
		return 0, 0
	}
	hits = counterValue(r.CacheHits.WithLabelValues(cacheType))
	misses = counterValue(r.CacheMisses.WithLabelValues(cacheType))
	return hits, misses
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return m.Counter.GetValue()
}
