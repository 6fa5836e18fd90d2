package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Jason0asdjia/crypto-price-api/internal/common"
	"github.com/Jason0asdjia/crypto-price-api/internal/interfaces"
)

// entry is the stored JSON payload. The logical expiry travels inside the
// value so an entry past its freshness window can still serve as a stale
// fallback; the Redis key itself expires at the retention horizon.
type entry struct {
	Value     float64   `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisCache implements QuoteCache on a Redis backend. Redis failures after
// startup degrade to misses and dropped writes rather than errors.
type RedisCache struct {
	client    *redis.Client
	retention time.Duration
	logger    *common.Logger
}

// NewRedisCache connects to the given Redis URL and verifies it with a ping.
func NewRedisCache(ctx context.Context, redisURL string, retention time.Duration, logger *common.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisCache{
		client:    client,
		retention: retention,
		logger:    logger,
	}, nil
}

// Get returns the cached value when a fresh entry exists.
func (c *RedisCache) Get(ctx context.Context, key string) (float64, bool) {
	e, ok := c.load(ctx, key)
	if !ok {
		return 0, false
	}
	if time.Now().After(e.ExpiresAt) {
		return 0, false
	}
	return e.Value, true
}

// GetStale returns the last stored value regardless of logical expiry.
func (c *RedisCache) GetStale(ctx context.Context, key string) (float64, bool) {
	e, ok := c.load(ctx, key)
	if !ok {
		return 0, false
	}
	return e.Value, true
}

// Set stores the value with its freshness window. The key is retained past
// expiry (up to the retention window) for stale reads.
func (c *RedisCache) Set(ctx context.Context, key string, value float64, ttl time.Duration) {
	e := entry{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.retention).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// Available reports true; construction already verified connectivity.
func (c *RedisCache) Available() bool { return true }

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error { return c.client.Close() }

func (c *RedisCache) load(ctx context.Context, key string) (entry, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return entry{}, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return entry{}, false
	}
	return e, true
}

var _ interfaces.QuoteCache = (*RedisCache)(nil)
