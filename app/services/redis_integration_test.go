package services

import (
	"context"
	"testing"
	"time"

	testingutil "github.com/amirphl/countdown-contest/testing"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRedis(t *testing.T) (*redis.Client, context.Context) {
	t.Helper()
	if testingutil.RedisURL() == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}
	ctx := context.Background()
	rdb, err := testingutil.NewTestRedis(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, ctx
}

func TestRedisClaimThrottle(t *testing.T) {
	rdb, ctx := withRedis(t)

	throttle := NewRedisClaimThrottle(rdb, 3, time.Minute)
	campaignID := uuid.NewString()
	key := utils.ClaimAttemptKeyPrefix + campaignID + ":203.0.113.7"
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allow(ctx, "203.0.113.7", campaignID)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := throttle.Allow(ctx, "203.0.113.7", campaignID)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	// other clients keep their own budget
	ok, err = throttle.Allow(ctx, "198.51.100.1", campaignID)
	require.NoError(t, err)
	assert.True(t, ok)
	rdb.Del(ctx, utils.ClaimAttemptKeyPrefix+campaignID+":198.51.100.1")
}

func TestRedisClaimThrottleWindowResets(t *testing.T) {
	rdb, ctx := withRedis(t)

	throttle := NewRedisClaimThrottle(rdb, 1, time.Second)
	campaignID := uuid.NewString()

	ok, err := throttle.Allow(ctx, "203.0.113.7", campaignID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = throttle.Allow(ctx, "203.0.113.7", campaignID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		ok, err := throttle.Allow(ctx, "203.0.113.7", campaignID)
		return err == nil && ok
	}, 5*time.Second, 200*time.Millisecond)
}

func TestRedisClaimThrottleKeepsWindowOnRepeatAttempts(t *testing.T) {
	rdb, ctx := withRedis(t)

	throttle := NewRedisClaimThrottle(rdb, 100, time.Minute)
	campaignID := uuid.NewString()
	key := utils.ClaimAttemptKeyPrefix + campaignID + ":203.0.113.7"
	t.Cleanup(func() { rdb.Del(context.Background(), key) })

	_, err := throttle.Allow(ctx, "203.0.113.7", campaignID)
	require.NoError(t, err)
	require.NoError(t, rdb.Expire(ctx, key, 30*time.Second).Err())

	_, err = throttle.Allow(ctx, "203.0.113.7", campaignID)
	require.NoError(t, err)

	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 30*time.Second)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisRevocationStore(t *testing.T) {
	rdb, ctx := withRedis(t)

	store := NewRedisRevocationStore(rdb)
	jti := uuid.NewString()
	t.Cleanup(func() { rdb.Del(context.Background(), utils.RevokedTokenKeyPrefix+jti) })

	revoked, err := store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, jti, time.Minute))
	revoked, err = store.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rdb.TTL(ctx, utils.RevokedTokenKeyPrefix+jti).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// a non-positive ttl means the token already expired
	other := uuid.NewString()
	require.NoError(t, store.Revoke(ctx, other, 0))
	revoked, err = store.IsRevoked(ctx, other)
	require.NoError(t, err)
	assert.False(t, revoked)
}
