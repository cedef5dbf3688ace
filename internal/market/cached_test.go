package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceintel/internal/cache"
	"priceintel/internal/domain/pricing"
	"priceintel/internal/metrics"
)

type fakeProvider struct {
	snapshot *pricing.MarketSnapshot
	err      error
	calls    int
}

func (f *fakeProvider) Fetch(ctx context.Context, term string) (*pricing.MarketSnapshot, error) {
	f.calls++
	return f.snapshot, f.err
}

func sampleSnapshot() *pricing.MarketSnapshot {
	return &pricing.MarketSnapshot{
		MedianPrice:  pricing.Float(28.50),
		AveragePrice: pricing.Float(29.00),
		MinPrice:     pricing.Float(20.00),
		MaxPrice:     pricing.Float(40.00),
		SampleSize:   15,
		SoldListings: 15,
		CollectedAt:  time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestCachedProvider_PopulatesAndServesCache(t *testing.T) {
	inner := &fakeProvider{snapshot: sampleSnapshot()}
	reg := metrics.NewRegistry()
	p := NewCachedProvider(inner, cache.NewMemory(), time.Hour, reg)

	first, err := p.Fetch(context.Background(), "Nike Sneakers")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	second, err := p.Fetch(context.Background(), "nike  sneakers")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second fetch must come from cache")
	assert.Equal(t, *first.MedianPrice, *second.MedianPrice)
	assert.Equal(t, first.SampleSize, second.SampleSize)

	hits, misses := reg.CacheStats("market")
	assert.Equal(t, 1.0, hits)
	assert.Equal(t, 1.0, misses)
}

func TestCachedProvider_DoesNotCacheEmptySnapshots(t *testing.T) {
	inner := &fakeProvider{snapshot: &pricing.MarketSnapshot{SampleSize: 0, LowConfidence: true}}
	p := NewCachedProvider(inner, cache.NewMemory(), time.Hour, nil)

	_, err := p.Fetch(context.Background(), "obscure upc")
	require.NoError(t, err)
	_, err = p.Fetch(context.Background(), "obscure upc")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "empty snapshots must not be cached")
}

func TestCachedProvider_ErrorPassesThrough(t *testing.T) {
	inner := &fakeProvider{err: errors.New("browser crashed")}
	p := NewCachedProvider(inner, cache.NewMemory(), time.Hour, nil)

	_, err := p.Fetch(context.Background(), "term")
	assert.Error(t, err)

	_, err = p.Fetch(context.Background(), "term")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.calls, "failures must not be cached")
}

func TestCachedProvider_CorruptEntryIsDropped(t *testing.T) {
	inner := &fakeProvider{snapshot: sampleSnapshot()}
	c := cache.NewMemory()
	c.Set(CacheKey("term"), []byte("{corrupt"), time.Hour)

	p := NewCachedProvider(inner, c, time.Hour, nil)

	snapshot, err := p.Fetch(context.Background(), "term")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 15, snapshot.SampleSize)
}
