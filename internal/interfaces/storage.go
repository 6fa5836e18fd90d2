package interfaces

import (
	"context"
	"time"
)

// QuoteCache is the read-through cache in front of the market-data API.
// Implementations must degrade gracefully: when the backing store is
// unavailable every Get reports a miss and every Set is a no-op, so cache
// availability is never a correctness dependency.
type QuoteCache interface {
	// Get returns the cached value if a fresh (non-expired) entry exists.
	Get(ctx context.Context, key string) (float64, bool)

	// GetStale returns the last known value regardless of logical expiry.
	// Used only as a fallback when the upstream fetch fails outright.
	GetStale(ctx context.Context, key string) (float64, bool)

	// Set stores a value with the given freshness window.
	Set(ctx context.Context, key string, value float64, ttl time.Duration)

	// Available reports whether the backing store answered the startup probe.
	Available() bool
}
