package auth

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorageRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := newRedisStorage(client, sessionKeyPrefix)

	require.NoError(t, storage.Set("sid-1", []byte("payload"), time.Hour))
	assert.True(t, mr.Exists("session:sid-1"), "session records live under their own namespace")

	val, err := storage.Get("sid-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), val)

	require.NoError(t, storage.Delete("sid-1"))
	val, err = storage.Get("sid-1")
	require.NoError(t, err, "a missing session is not an error")
	assert.Nil(t, val)
}

func TestRedisStorageResetOnlyTouchesNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage := newRedisStorage(client, sessionKeyPrefix)
	require.NoError(t, storage.Set("sid-1", []byte("a"), 0))
	require.NoError(t, storage.Set("sid-2", []byte("b"), 0))
	require.NoError(t, mr.Set("jwt:some-jti", "claims"))

	require.NoError(t, storage.Reset())

	assert.False(t, mr.Exists("session:sid-1"))
	assert.False(t, mr.Exists("session:sid-2"))
	assert.True(t, mr.Exists("jwt:some-jti"), "token records must survive a session reset")
}
