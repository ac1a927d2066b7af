package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdist/flowdistributor/internal/usecase"
)

// CachedProvider wraps a RateProvider with a read-through cache so hot
// pairs don't hit the upstream source on every conversion. A cache miss
// or a cache failure falls through to the inner provider.
type CachedProvider struct {
	inner usecase.RateProvider
	cache usecase.Cache
	ttl   time.Duration
}

// NewCachedProvider creates a new CachedProvider.
func NewCachedProvider(inner usecase.RateProvider, cache usecase.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: cache,
		ttl:   ttl,
	}
}

// GetRate returns the cached rate for from→to, consulting the inner
// provider on a miss.
func (p *CachedProvider) GetRate(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, error) {
	key := fmt.Sprintf("rate:%s:%s", from, to)

	if cached, err := p.cache.Get(ctx, key); err == nil {
		if rate, err := decimal.NewFromString(string(cached)); err == nil {
			return rate, nil
		}
	}

	rate, err := p.inner.GetRate(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	// Best effort: a failed cache write must not fail the conversion.
	_ = p.cache.Set(ctx, key, []byte(rate.String()), p.ttl)

	return rate, nil
}
