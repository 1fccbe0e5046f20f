// Package cache wraps Redis for idempotency guards and small read-through caches.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// Connect returns nil, nil when REDIS_ADDR is empty.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// Guard is a SET NX lease used to serialize duplicate deliveries of the same key.
type Guard struct {
	rdb    *redis.Client
	prefix string
}

func NewGuard(rdb *redis.Client) *Guard {
	return &Guard{rdb: rdb, prefix: "garden:guard:"}
}

// Acquire reports whether the caller now holds key. Without Redis every
// caller holds it and the database unique indexes decide.
func (g *Guard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if g == nil || g.rdb == nil {
		return true, nil
	}
	return g.rdb.SetNX(ctx, g.prefix+key, "1", ttl).Result()
}

func (g *Guard) Release(ctx context.Context, key string) {
	if g == nil || g.rdb == nil {
		return
	}
	_ = g.rdb.Del(ctx, g.prefix+key).Err()
}

// Store is a string cache.
type Store struct {
	rdb    *redis.Client
	prefix string
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, prefix: "garden:cache:"}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if s == nil || s.rdb == nil {
		return "", false
	}
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) || err != nil {
		return "", false
	}
	return v, true
}

func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, s.prefix+key).Err()
}
