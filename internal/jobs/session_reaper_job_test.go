package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events-admin/internal/services"
)

type countingEvicter struct {
	calls atomic.Int32
	idle  atomic.Int64
}

func (c *countingEvicter) EvictIdle(idle time.Duration) int {
	c.calls.Add(1)
	c.idle.Store(int64(idle))
	return 1
}

func TestSessionReaperRunsOnTicker(t *testing.T) {
	evicter := &countingEvicter{}
	job := NewSessionReaperJob(evicter, 30*time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job.Start(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return evicter.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(30*time.Minute), evicter.idle.Load())

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := evicter.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, evicter.calls.Load(), "no runs after stop")
}

func TestSessionReaperEvictsIdleSessions(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	manager := services.NewSessionManager(nil, services.SessionOptions{Now: clock})
	manager.Get("alice")
	manager.Get("bob")
	require.Equal(t, 2, manager.Count())

	job := NewSessionReaperJob(manager, time.Hour, nil)
	assert.Equal(t, 0, job.RunOnce())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 2, job.RunOnce())
	assert.Equal(t, 0, manager.Count())
}
