package market

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"priceintel/internal/cache"
	"priceintel/internal/domain/pricing"
	"priceintel/internal/metrics"
)

// CachedProvider consults the cache before delegating to the underlying
// provider and stores non-empty snapshots afterwards. Corrupt cache entries
// are treated as misses.
type CachedProvider struct {
	inner   Provider
	cache   cache.Cache
	ttl     time.Duration
	metrics *metrics.Registry
}

// NewCachedProvider wraps a provider with snapshot caching. The metrics
// registry may be nil.
func NewCachedProvider(inner Provider, c cache.Cache, ttl time.Duration, reg *metrics.Registry) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c, ttl: ttl, metrics: reg}
}

func (p *CachedProvider) Fetch(ctx context.Context, term string) (*pricing.MarketSnapshot, error) {
	key := CacheKey(term)

	if b, ok := p.cache.Get(key); ok {
		var snapshot pricing.MarketSnapshot
		if err := json.Unmarshal(b, &snapshot); err == nil {
			log.Debug().Str("term", term).Msg("Market snapshot served from cache")
			p.metrics.CacheHit("market")
			return &snapshot, nil
		}
		log.Warn().Str("key", key).Msg("Dropping corrupt cached market snapshot")
		p.cache.Delete(key)
	}
	p.metrics.CacheMiss("market")

	snapshot, err := p.inner.Fetch(ctx, term)
	if err != nil {
		return nil, err
	}

	// Only meaningful snapshots are worth a cache slot.
	if snapshot != nil && snapshot.SampleSize > 0 {
		if b, err := json.Marshal(snapshot); err == nil {
			p.cache.Set(key, b, p.ttl)
		}
	}

	return snapshot, nil
}
