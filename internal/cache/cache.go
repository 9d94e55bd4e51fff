package cache

import (
	"context"
	"time"
)

// Cache is the page cache the index handler is composed with. Entries expire
// after their TTL; Clear is the only other way an entry goes away.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}
