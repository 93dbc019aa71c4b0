package services

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/countdown-contest/utils"
	"github.com/redis/go-redis/v9"
)

// ClaimThrottle counts claim attempts per client and campaign inside a fixed window
type ClaimThrottle interface {
	// Allow records an attempt and reports whether it is within the limit
	Allow(ctx context.Context, clientIP, campaignID string) (bool, error)
}

type redisClaimThrottle struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisClaimThrottle returns a throttle backed by INCR and EXPIRE NX.
// A nil client or a non-positive limit disables throttling.
func NewRedisClaimThrottle(rdb *redis.Client, limit int, window time.Duration) ClaimThrottle {
	if rdb == nil || limit <= 0 {
		return NoopClaimThrottle{}
	}
	if window <= 0 {
		window = utils.DefaultClaimAttemptWindow
	}
	return &redisClaimThrottle{rdb: rdb, limit: int64(limit), window: window}
}

func (t *redisClaimThrottle) Allow(ctx context.Context, clientIP, campaignID string) (bool, error) {
	key := fmt.Sprintf("%s%s:%s", utils.ClaimAttemptKeyPrefix, campaignID, clientIP)

	// INCR and EXPIRE NX run in one MULTI so the counter never outlives its window
	var incr *redis.IntCmd
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, t.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= t.limit, nil
}

// NoopClaimThrottle allows every attempt
type NoopClaimThrottle struct{}

func (NoopClaimThrottle) Allow(context.Context, string, string) (bool, error) {
	return true, nil
}
