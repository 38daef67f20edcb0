package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client, err := Initialize("redis://" + server.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, server
}

func TestTryLockContention(t *testing.T) {
	client, server := setupClient(t)
	ctx := context.Background()
	const key = "like-lock:a:b"

	token, ok, err := client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Greater(t, server.TTL(key), time.Duration(0))

	_, ok, err = client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Unlock(ctx, key, token))
	assert.False(t, server.Exists(key))

	_, ok, err = client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockRequiresOwnerToken(t *testing.T) {
	client, server := setupClient(t)
	ctx := context.Background()
	const key = "like-lock:a:b"

	token, ok, err := client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	err = client.Unlock(ctx, key, "not-the-owner")
	assert.ErrorIs(t, err, ErrLockNotHeld)
	held, err := server.Get(key)
	require.NoError(t, err)
	assert.Equal(t, token, held)

	require.NoError(t, client.Unlock(ctx, key, token))
	assert.ErrorIs(t, client.Unlock(ctx, key, token), ErrLockNotHeld)
}

func TestLockExpires(t *testing.T) {
	client, server := setupClient(t)
	ctx := context.Background()
	const key = "like-lock:a:b"

	stale, ok, err := client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	server.FastForward(6 * time.Second)

	_, ok, err = client.TryLock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	// The expired holder cannot release the new holder's lock.
	assert.ErrorIs(t, client.Unlock(ctx, key, stale), ErrLockNotHeld)
	assert.True(t, server.Exists(key))
}
