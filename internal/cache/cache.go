// Package cache provides the read-through quote cache in front of the
// market-data API. Three implementations exist: Redis (production), an
// in-process map (development and tests), and a disabled stub used when the
// configured Redis is unreachable.
package cache

import (
	"context"
	"time"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
)

// Key suffixes for the two cached quote fields.
const (
	suffixPrice  = ":price"
	suffixChange = ":change"
)

// Keys builds cache keys under a fixed prefix.
type Keys struct {
	prefix string
}

// NewKeys creates a key builder with the given prefix.
func NewKeys(prefix string) Keys {
	return Keys{prefix: prefix}
}

// Price returns the cache key for a symbol's USD price.
func (k Keys) Price(symbol string) string {
	return k.prefix + symbol + suffixPrice
}

// Change returns the cache key for a symbol's 24h percent change.
func (k Keys) Change(symbol string) string {
	return k.prefix + symbol + suffixChange
}

// New selects the cache backend for the current environment. A configured
// Redis that answers the ping wins; otherwise non-production gets the
// in-process cache and production runs with caching disabled.
func New(ctx context.Context, cfg *common.Config, logger *common.Logger) interfaces.QuoteCache {
	retention := cfg.Cache.GetRetention()

	if cfg.Cache.RedisURL != "" {
		redisCache, err := NewRedisCache(ctx, cfg.Cache.RedisURL, retention, logger)
		if err == nil {
			logger.Info().Msg("quote cache: redis")
			return redisCache
		}
		logger.Warn().Err(err).Msg("redis unreachable")
	}

	if !cfg.IsProduction() {
		logger.Info().Msg("quote cache: in-process memory")
		return NewMemoryCache(retention)
	}

	logger.Warn().Msg("quote cache disabled, every cycle hits the upstream API")
	return Disabled{}
}

// Disabled is the no-op cache used when no backend is usable in production.
type Disabled struct{}

func (Disabled) Get(context.Context, string) (float64, bool)      { return 0, false }
func (Disabled) GetStale(context.Context, string) (float64, bool) { return 0, false }
func (Disabled) Set(context.Context, string, float64, time.Duration) {
}
func (Disabled) Available() bool { return false }

var _ interfaces.QuoteCache = Disabled{}
