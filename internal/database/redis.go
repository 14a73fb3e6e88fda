package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/feedesk-backend/internal/cache"
	"github.com/stemsi/feedesk-backend/internal/config"
)

// MemoryRedisURL selects the in-process cache instead of a Redis server,
// for single-instance deployments and local development.
const MemoryRedisURL = "memory://"

// CacheStore is a cache.Store that can also be health-checked.
type CacheStore interface {
	cache.Store
	Ping(ctx context.Context) error
}

// NewCacheStore connects to Redis, or returns an in-process store when
// REDIS_URL is memory://. The returned func releases the connection.
func NewCacheStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (CacheStore, func(), error) {
	if cfg.RedisURL == MemoryRedisURL {
		log.Warn().Msg("using in-process cache; idempotency keys are not shared between instances")
		return cache.NewMemoryStore(), func() {}, nil
	}

	rdb, err := NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
}

// NewRedisClient creates and validates a Redis client connection.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Msg("Redis connected")

	return rdb, nil
}
