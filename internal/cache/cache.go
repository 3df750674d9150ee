package cache

import (
	"context"
	"time"

	"StockRadar/internal/model"
)

// Store is the cache boundary the fetch pipeline reads and writes through.
// Implementations must be atomic per key; the pipeline adds no locking of
// its own.
type Store interface {
	// Get returns the entry for key, or ok=false when absent or expired.
	Get(ctx context.Context, key model.ResourceKey) (*model.CacheEntry, bool, error)
	// Set stores payload under key for ttl.
	Set(ctx context.Context, key model.ResourceKey, payload []byte, ttl time.Duration) error
	Close() error
}
