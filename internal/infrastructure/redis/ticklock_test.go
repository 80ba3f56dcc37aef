package redisstore_test

import (
	"context"
	"testing"
	"time"

	redisstore "fxrates-ingest/internal/infrastructure/redis"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func newLock(t *testing.T, ttl time.Duration) (*redisstore.TickLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisstore.Connect(context.Background(), redisstore.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewTickLock(client, ttl), mr
}

func TestTickLock_Exclusive(t *testing.T) {
	lock, mr := newLock(t, time.Minute)
	ctx := context.Background()

	release, ok, err := lock.TryAcquire(ctx, "tick")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, mr.Exists("tick"))

	_, ok, err = lock.TryAcquire(ctx, "tick")
	require.NoError(t, err)
	require.False(t, ok)

	release(ctx)
	require.False(t, mr.Exists("tick"))

	release2, ok, err := lock.TryAcquire(ctx, "tick")
	require.NoError(t, err)
	require.True(t, ok)
	release2(ctx)
}

func TestTickLock_ExpiredLeaseNotReleasedByOldHolder(t *testing.T) {
	lock, mr := newLock(t, time.Second)
	ctx := context.Background()

	staleRelease, ok, err := lock.TryAcquire(ctx, "tick")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	_, ok, err = lock.TryAcquire(ctx, "tick")
	require.NoError(t, err)
	require.True(t, ok)

	staleRelease(ctx)
	require.True(t, mr.Exists("tick"), "new holder's lease must survive")
}

func TestTickLock_TTLApplied(t *testing.T) {
	lock, mr := newLock(t, 90*time.Second)
	_, ok, err := lock.TryAcquire(context.Background(), "tick")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 90*time.Second, mr.TTL("tick"))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := redisstore.Connect(context.Background(), redisstore.Options{Addr: addr})
	require.Error(t, err)
}
