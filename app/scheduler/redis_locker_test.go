package scheduler

import (
	"context"
	"testing"
	"time"

	testingutil "github.com/amirphl/countdown-contest/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker(t *testing.T) {
	if testingutil.RedisURL() == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	ctx := context.Background()
	rdb, err := testingutil.NewTestRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := NewRedisLocker(rdb)
	key := "lock:test:" + uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	ok, err := locker.TryLock(ctx, key, "a", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.TryLock(ctx, key, "b", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	owner, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "a", owner)

	// the lease lapses on its own
	require.Eventually(t, func() bool {
		ok, err := locker.TryLock(ctx, key, "b", time.Second)
		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond)
}
