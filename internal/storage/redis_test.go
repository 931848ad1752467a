package storage

import (
	"context"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_keyPrefix(t *testing.T) {
	s := NewRedisStore(nil, "")
	assert.Equal(t, "videowall:layout", s.key(KeyLayout))

	s = NewRedisStore(nil, "wall-7:")
	assert.Equal(t, "wall-7:streams", s.key(KeyStreams))
}

// redisAddr returns VIDEOWALL_TEST_REDIS_ADDR when set, otherwise the
// address of an in-process server. The server is nil for a live address.
func redisAddr(t *testing.T) (string, *miniredis.Miniredis) {
	t.Helper()
	if addr := os.Getenv("VIDEOWALL_TEST_REDIS_ADDR"); addr != "" {
		return addr, nil
	}
	mr := miniredis.RunT(t)
	return mr.Addr(), mr
}

func TestRedisStore_roundTrip(t *testing.T) {
	addr, mr := redisAddr(t)
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	prefix := "videowall-test-" + uuid.NewString() + ":"
	s := NewRedisStore(client, prefix)
	t.Cleanup(func() { client.Del(ctx, prefix+KeySettings) })

	_, err = s.Get(ctx, KeySettings)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, KeySettings, []byte(`{"enableSubtitles":true}`)))
	b, err := s.Get(ctx, KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"enableSubtitles":true}`, string(b))

	require.NoError(t, s.Set(ctx, KeySettings, []byte(`{"enableSubtitles":false}`)))
	b, err = s.Get(ctx, KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"enableSubtitles":false}`, string(b), "set replaces the value")

	if mr != nil {
		raw, err := mr.Get(prefix + KeySettings)
		require.NoError(t, err)
		assert.JSONEq(t, `{"enableSubtitles":false}`, raw)
		assert.False(t, mr.Exists(KeySettings), "keys are always prefixed")
	}
}

func TestRedisStore_prefixesIsolate(t *testing.T) {
	addr, _ := redisAddr(t)
	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	a := NewRedisStore(client, "wall-a-"+uuid.NewString()+":")
	b := NewRedisStore(client, "wall-b-"+uuid.NewString()+":")
	t.Cleanup(func() { client.Del(ctx, a.key(KeyLayout), b.key(KeyLayout)) })

	require.NoError(t, a.Set(ctx, KeyLayout, []byte(`["x"]`)))
	_, err = b.Get(ctx, KeyLayout)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_serverErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	client, err := NewRedisClient(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	s := NewRedisStore(client, "")

	mr.SetError("ERR storage offline")
	_, err = s.Get(ctx, KeyStreams)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Set(ctx, KeyStreams, []byte(`[]`)))

	mr.SetError("")
	require.NoError(t, s.Set(ctx, KeyStreams, []byte(`[]`)))
}

func TestNewRedisClient_unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
