package market

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"priceintel/internal/domain/pricing"
)

// BreakerProvider wraps a provider with a circuit breaker so a struggling
// marketplace backend fails fast instead of stalling every request. Callers
// map any returned error (including an open breaker) to "no market data".
type BreakerProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps inner with a circuit breaker that opens after
// five consecutive failures and retries after 60 seconds.
func NewBreakerProvider(inner Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        "market-fetch",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Market fetch breaker state change")
		},
	}
	return &BreakerProvider{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (p *BreakerProvider) Fetch(ctx context.Context, term string) (*pricing.MarketSnapshot, error) {
	result, err := p.cb.Execute(func() (interface{}, error) {
		return p.inner.Fetch(ctx, term)
	})
	if err != nil {
		return nil, err
	}
	return result.(*pricing.MarketSnapshot), nil
}
