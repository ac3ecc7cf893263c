package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisAdapter) {
	t.Helper()
	mr := miniredis.RunT(t)
	adapter, err := NewRedisAdapter(context.Background(), RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = adapter.Close() })
	return mr, adapter
}

func TestRedisAdapter(t *testing.T) {
	_, adapter := newTestRedis(t)
	adapterContract(t, adapter)
}

func TestRedisAdapter_Namespace(t *testing.T) {
	mr, adapter := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "run:1", json.RawMessage(`{"a":1}`)))
	assert.True(t, mr.Exists("baton:run:1"))

	// Keys outside the namespace are invisible.
	require.NoError(t, mr.Set("elsewhere:run:2", "{}"))
	keys, err := adapter.Keys(ctx, "run:")
	require.NoError(t, err)
	assert.Equal(t, []string{"run:1"}, keys)
}

func TestRedisAdapter_GlobCharactersInPrefix(t *testing.T) {
	_, adapter := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "a*b", json.RawMessage(`1`)))
	require.NoError(t, adapter.Set(ctx, "axb", json.RawMessage(`2`)))

	keys, err := adapter.Keys(ctx, "a*")
	require.NoError(t, err)
	assert.Equal(t, []string{"a*b"}, keys)
}

func TestRedisAdapter_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	adapter := NewRedisAdapterFromClient(client, "test:", time.Minute)
	t.Cleanup(func() { _ = adapter.Close() })
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "k", json.RawMessage(`1`)))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRedisAdapter_Errors(t *testing.T) {
	_, err := NewRedisAdapter(context.Background(), RedisConfig{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = NewRedisAdapter(ctx, RedisConfig{Address: addr})
	assert.Error(t, err)
}
