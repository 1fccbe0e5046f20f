package cache

import (
	"context"
	"testing"
	"time"

	"github.com/nctr-alliance/garden-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledRedis(t *testing.T) {
	ctx := context.Background()
	rdb, err := Connect(ctx, &config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rdb)

	g := NewGuard(rdb)
	ok, err := g.Acquire(ctx, "ledger:ext:a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = g.Acquire(ctx, "ledger:ext:a", time.Second)
	assert.True(t, ok)
	g.Release(ctx, "ledger:ext:a")

	s := NewStore(rdb)
	s.Set(ctx, "k", "v", time.Minute)
	_, found := s.Get(ctx, "k")
	assert.False(t, found)
}
