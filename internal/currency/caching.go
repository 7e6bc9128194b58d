package currency

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCacheTTL is how long a fetched rate stays fresh
const DefaultCacheTTL = 5 * time.Minute

// CachingProvider wraps a Provider with an expiring in-memory cache.
// Repeated runs inside one session reuse rates for the TTL.
type CachingProvider struct {
	inner Provider
	cache *cache.Cache
}

// NewCachingProvider creates a caching wrapper; ttl <= 0 means DefaultCacheTTL
func NewCachingProvider(inner Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachingProvider{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (p *CachingProvider) Name() string { return p.inner.Name() }

func (p *CachingProvider) Rate(ctx context.Context, base, target string) (float64, error) {
	key := Normalize(base) + ":" + Normalize(target)
	if v, ok := p.cache.Get(key); ok {
		return v.(float64), nil
	}

	rate, err := p.inner.Rate(ctx, base, target)
	if err != nil {
		return 0, err
	}
	p.cache.SetDefault(key, rate)
	return rate, nil
}
