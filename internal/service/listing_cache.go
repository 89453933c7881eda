package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/cache"
)

// defaultListingTTL applies when a service is built without a listing TTL.
const defaultListingTTL = 3 * time.Minute

// cachedPage returns the page stored under key. Cache errors and undecodable
// entries count as a miss so listings degrade to the store.
func cachedPage[T any](ctx context.Context, gw cache.Gateway, log *slog.Logger, key string) (*Page[T], bool) {
	raw, ok, err := gw.Get(ctx, key)
	if err != nil {
		log.Warn("listing cache read failed, using store",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var cached Page[T]
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Warn("discarding undecodable cached listing",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, false
	}

	log.Debug("listing served from cache", slog.String("key", key))
	return &cached, true
}

// storePage caches page under key for ttl. Failures are logged only.
func storePage[T any](ctx context.Context, gw cache.Gateway, log *slog.Logger, key string, page *Page[T], ttl time.Duration) {
	encoded, err := json.Marshal(page)
	if err != nil {
		log.Warn("failed to encode listing for cache", slog.String("error", err.Error()))
		return
	}
	if err := gw.Set(ctx, key, encoded, ttl); err != nil {
		log.Warn("failed to cache listing",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}
