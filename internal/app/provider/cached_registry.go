package provider

import (
	"context"
	"maps"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"token_resolver/internal/app/port"
	"token_resolver/internal/domain/entity"
)

// CachedRegistry keeps registry answers per chain ID for a fixed TTL.
// Concurrent misses for the same chain share one upstream call.
type CachedRegistry struct {
	next   port.TokenRegistry
	cache  *cache.Cache
	group  singleflight.Group
	logger port.Logger
}

var _ port.TokenRegistry = (*CachedRegistry)(nil)

// NewCachedRegistry wraps next with a TTL cache. A non-positive ttl disables caching.
func NewCachedRegistry(next port.TokenRegistry, ttl time.Duration, logger port.Logger) *CachedRegistry {
	r := &CachedRegistry{next: next, logger: logger}
	if ttl > 0 {
		r.cache = cache.New(ttl, 2*ttl)
	}
	return r
}

// GetTokens implements port.TokenRegistry. Failed calls are not cached.
func (r *CachedRegistry) GetTokens(ctx context.Context, chainID uint64) (map[string]entity.TokenInfo, error) {
	if r.cache == nil {
		return r.next.GetTokens(ctx, chainID)
	}

	key := strconv.FormatUint(chainID, 10)
	if cached, found := r.cache.Get(key); found {
		r.logger.Debug("Returning cached tokens", "chain_id", chainID)
		return maps.Clone(cached.(map[string]entity.TokenInfo)), nil
	}

	// Detached from the caller: other waiters may share the result.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		tokens, err := r.next.GetTokens(context.WithoutCancel(ctx), chainID)
		if err != nil {
			return nil, err
		}
		r.cache.SetDefault(key, tokens)
		return tokens, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return maps.Clone(res.Val.(map[string]entity.TokenInfo)), nil
	}
}
