package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
)

// MemoryGateway is an in-process Gateway backed by ttlcache.
type MemoryGateway struct {
	items *ttlcache.Cache[string, []byte]
}

var _ Gateway = (*MemoryGateway)(nil)

// NewMemoryGateway creates a MemoryGateway whose entries default to
// defaultTTL. Call Start to begin evicting expired entries in the background
// and Stop to release the eviction goroutine.
func NewMemoryGateway(defaultTTL time.Duration) *MemoryGateway {
	return &MemoryGateway{
		items: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](defaultTTL),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// Start runs the expiry loop until Stop is called. It blocks.
func (g *MemoryGateway) Start() { g.items.Start() }

// Stop ends the expiry loop started by Start.
func (g *MemoryGateway) Stop() { g.items.Stop() }

// Get implements Gateway.Get
func (g *MemoryGateway) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := g.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

// Set implements Gateway.Set
func (g *MemoryGateway) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	g.items.Set(key, value, ttl)
	return nil
}

// RemoveByOwner implements Gateway.RemoveByOwner
func (g *MemoryGateway) RemoveByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	removed := g.removePrefix(OwnerPrefix(ownerID))

	logger.FromContext(ctx).Debug("removed cached listings",
		slog.String("owner_id", ownerID.String()),
		slog.Int("removed", removed))

	return removed, nil
}

// RemovePrefix implements Gateway.RemovePrefix
func (g *MemoryGateway) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	removed := g.removePrefix(prefix)

	logger.FromContext(ctx).Debug("removed cached entries",
		slog.String("prefix", prefix),
		slog.Int("removed", removed))

	return removed, nil
}

// removePrefix scans every key; the cache is small and process-local.
func (g *MemoryGateway) removePrefix(prefix string) int {
	removed := 0
	for _, key := range g.items.Keys() {
		if strings.HasPrefix(key, prefix) {
			g.items.Delete(key)
			removed++
		}
	}
	return removed
}
