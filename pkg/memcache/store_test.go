package memcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewInMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "reset_abc", "account-1", time.Hour))

	v, err := s.Get(ctx, "reset_abc")
	require.NoError(t, err)
	assert.Equal(t, "account-1", v)

	now = now.Add(2 * time.Hour)
	_, err = s.Get(ctx, "reset_abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestInMemoryStoreConsume(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	v, err := s.Consume(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = s.Consume(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "test:"), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Set(ctx, "geocode_leeds", `{"latitude":53.8}`, time.Minute))
	assert.True(t, mr.Exists("test:geocode_leeds"))

	v, err := s.Get(ctx, "geocode_leeds")
	require.NoError(t, err)
	assert.Equal(t, `{"latitude":53.8}`, v)

	mr.FastForward(2 * time.Minute)
	_, err = s.Get(ctx, "geocode_leeds")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisStoreConsume(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	require.NoError(t, s.Set(ctx, "reset_tok", "acc", time.Hour))
	v, err := s.Consume(ctx, "reset_tok")
	require.NoError(t, err)
	assert.Equal(t, "acc", v)
	assert.False(t, mr.Exists("test:reset_tok"))

	_, err = s.Consume(ctx, "reset_tok")
	assert.ErrorIs(t, err, ErrMiss)
}
