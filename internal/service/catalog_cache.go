package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
)

// cachedList serves a list from the cache, loading and storing it on a miss.
// Cache trouble is logged and never fails the request.
func cachedList[T any](
	ctx context.Context,
	store cache.Store,
	key string,
	ttl time.Duration,
	log zerolog.Logger,
	load func(context.Context) ([]T, error),
) ([]T, error) {
	if store != nil {
		raw, err := store.Get(ctx, key)
		switch {
		case err == nil:
			var items []T
			if jsonErr := json.Unmarshal([]byte(raw), &items); jsonErr == nil {
				return items, nil
			}
			log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		case !errors.Is(err, cache.ErrMiss):
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	if store != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := store.Set(ctx, key, string(data), ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache write failed")
			}
		}
	}
	return items, nil
}

func invalidate(ctx context.Context, store cache.Store, log zerolog.Logger, keys ...string) {
	if store == nil {
		return
	}
	if err := store.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
