// Package cache is the injected reference-data cache used by the
// dependent dropdown fetchers. Entries carry an explicit TTL; there is no
// ambient shared cache anywhere else in the system.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys with a per-entry
// TTL. A zero TTL means the entry does not expire until invalidated.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
