package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petopia-search/internal/common/config"
	"petopia-search/internal/common/logger"
)

func newTestRedis(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedis(config.CacheConfig{
		Prefix: "petopia:options",
		Redis:  config.RedisConfig{Address: mr.Addr()},
	})
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	key := c.Key("sigungu", "서울특별시")
	assert.Equal(t, "petopia:options:sigungu:서울특별시", key)

	require.NoError(t, c.SetJSON(ctx, key, []string{"강남구", "마포구"}, time.Minute))

	var got []string
	require.NoError(t, c.GetJSON(ctx, key, &got))
	assert.Equal(t, []string{"강남구", "마포구"}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, c.GetJSON(ctx, key, &got), ErrMiss)
}

func TestRedisClient_Miss(t *testing.T) {
	c, _ := newTestRedis(t)
	var got []string
	assert.ErrorIs(t, c.GetJSON(context.Background(), "absent", &got), ErrMiss)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.CacheConfig{Redis: config.RedisConfig{Address: mr.Addr()}}

	c, err := Connect(context.Background(), cfg, logger.NewTestLogger(t), 3)
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Ping(context.Background()))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.CacheConfig{Redis: config.RedisConfig{Address: addr}}
	_, err := Connect(context.Background(), cfg, logger.NewNoOpLogger(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connect failed")
}
