package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/countdown-contest/app/dto"
	businessflow "github.com/amirphl/countdown-contest/business_flow"
	"github.com/amirphl/countdown-contest/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExportFlow struct {
	mu      sync.Mutex
	uploads int
	err     error
}

func (f *fakeExportFlow) BuildWorkbook(context.Context, *uint, *businessflow.ClientMetadata) (*dto.WinnersExport, error) {
	return &dto.WinnersExport{}, nil
}

func (f *fakeExportFlow) Upload(context.Context) (*dto.WinnersExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.uploads++
	return &dto.WinnersExport{Rows: 2, ObjectURL: "https://cdn.example.com/exports/winners.xlsx"}, nil
}

func (f *fakeExportFlow) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploads
}

// memoryLocker mimics SET NX with expiry
type memoryLocker struct {
	mu     sync.Mutex
	owners map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{owners: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (l *memoryLocker) TryLock(_ context.Context, key, owner string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if _, held := l.owners[key]; held {
		return false, nil
	}
	l.owners[key] = owner
	l.ttls[key] = ttl
	return true, nil
}

func TestRunOnce_SingleInstancePerInterval(t *testing.T) {
	locker := newMemoryLocker()
	flowA := &fakeExportFlow{}
	flowB := &fakeExportFlow{}

	a := NewWinnerExportScheduler(flowA, locker, time.Hour)
	b := NewWinnerExportScheduler(flowB, locker, time.Hour)

	assert.True(t, a.runOnce(context.Background()))
	assert.False(t, b.runOnce(context.Background()))

	assert.Equal(t, 1, flowA.count())
	assert.Equal(t, 0, flowB.count())
	assert.Equal(t, a.owner, locker.owners[utils.ExportLockKey])
	assert.Equal(t, 54*time.Minute, locker.ttls[utils.ExportLockKey])
}

func TestRunOnce_Failures(t *testing.T) {
	t.Run("lock error skips the export", func(t *testing.T) {
		locker := newMemoryLocker()
		locker.err = errors.New("redis down")
		flow := &fakeExportFlow{}

		s := NewWinnerExportScheduler(flow, locker, time.Hour)
		assert.False(t, s.runOnce(context.Background()))
		assert.Equal(t, 0, flow.count())
	})

	t.Run("upload error", func(t *testing.T) {
		flow := &fakeExportFlow{err: businessflow.ErrExportStorageNotConfigured}
		s := NewWinnerExportScheduler(flow, nil, time.Hour)
		assert.False(t, s.runOnce(context.Background()))
	})

	t.Run("cancelled context", func(t *testing.T) {
		flow := &fakeExportFlow{}
		s := NewWinnerExportScheduler(flow, nil, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.False(t, s.runOnce(ctx))
		assert.Equal(t, 0, flow.count())
	})
}

func TestStart_RunsImmediately(t *testing.T) {
	flow := &fakeExportFlow{}
	s := NewWinnerExportScheduler(flow, newMemoryLocker(), time.Hour)

	stop, err := s.Start(context.Background())
	require.NoError(t, err)
	defer stop()

	require.Eventually(t, func() bool { return flow.count() == 1 }, 5*time.Second, 20*time.Millisecond)
}
