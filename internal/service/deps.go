package service

import (
	"context"
	"time"
)

// Guard serializes work on a key across instances.
type Guard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (nopGuard) Release(context.Context, string)                              {}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (string, bool)         { return "", false }
func (nopCache) Set(context.Context, string, string, time.Duration) {}
func (nopCache) Delete(context.Context, string)                     {}

func utcNow() time.Time {
	return time.Now().UTC()
}
