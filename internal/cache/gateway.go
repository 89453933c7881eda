package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Gateway is a key-value cache with per-entry expiry.
// Implementations hold no business knowledge beyond the key layout produced
// produced by the key helpers in this package.
type Gateway interface {
	// Get returns the cached value for key. The boolean is false on a miss
	// or when the entry has expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// RemoveByOwner deletes every entry under OwnerPrefix(ownerID) and returns
	// how many were removed. Removing nothing is not an error.
	RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)

	// RemovePrefix deletes every entry whose key starts with prefix.
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}
