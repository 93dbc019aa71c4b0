// Package scheduler runs periodic background jobs
package scheduler

import (
	"context"
	"log"
	"time"

	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker grants a lease on key to at most one holder until ttl elapses
type Locker interface {
	TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
}

type redisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker returns a Locker backed by SET NX
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{rdb: rdb}
}

func (l *redisLocker) TryLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, key, owner, ttl).Result()
}

// WinnerExportScheduler uploads the winners workbook to object storage on a fixed interval.
// The lease is never released early so that only one instance exports per interval.
type WinnerExportScheduler struct {
	flow     businessflow.WinnerExportFlow
	locker   Locker
	interval time.Duration
	owner    string
	logger   *log.Logger
}

func NewWinnerExportScheduler(flow businessflow.WinnerExportFlow, locker Locker, interval time.Duration) *WinnerExportScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &WinnerExportScheduler{
		flow:     flow,
		locker:   locker,
		interval: interval,
		owner:    uuid.NewString(),
		logger:   log.New(log.Writer(), "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC),
	}
}

// lockTTL stays below the interval so the next tick can take the lease again
func (s *WinnerExportScheduler) lockTTL() time.Duration {
	return s.interval * 9 / 10
}

// Start registers the export job and returns a stop function
func (s *WinnerExportScheduler) Start(parent context.Context) (func(), error) {
	ctx, cancel := context.WithCancel(parent)

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		cancel()
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.runOnce(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName("winners-export"),
	)
	if err != nil {
		cancel()
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	s.logger.Printf("scheduler: winners export every %s", s.interval)

	return func() {
		cancel()
		if err := sched.Shutdown(); err != nil {
			s.logger.Printf("scheduler: shutdown failed: %v", err)
		}
	}, nil
}

// runOnce reports whether this instance performed the export
func (s *WinnerExportScheduler) runOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	if s.locker != nil {
		ok, err := s.locker.TryLock(ctx, utils.ExportLockKey, s.owner, s.lockTTL())
		if err != nil {
			s.logger.Printf("scheduler: export lock failed: %v", err)
			return false
		}
		if !ok {
			s.logger.Printf("scheduler: export already handled by another instance")
			return false
		}
	}

	export, err := s.flow.Upload(ctx)
	if err != nil {
		s.logger.Printf("scheduler: winners export failed: %v", err)
		return false
	}

	s.logger.Printf("scheduler: exported %d winners to %s", export.Rows, export.ObjectURL)
	return true
}
