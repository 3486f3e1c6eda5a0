package jobs

import (
	"context"
	"log/slog"
	"time"
)

// SessionEvicter drops sessions idle for longer than a duration
type SessionEvicter interface {
	EvictIdle(idle time.Duration) int
}

type SessionReaperJob struct {
	sessions SessionEvicter
	idle     time.Duration
	logger   *slog.Logger
}

func NewSessionReaperJob(sessions SessionEvicter, idle time.Duration, logger *slog.Logger) *SessionReaperJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionReaperJob{
		sessions: sessions,
		idle:     idle,
		logger:   logger.With("job", "session_reaper"),
	}
}

// RunOnce evicts idle sessions and returns how many were dropped
func (j *SessionReaperJob) RunOnce() int {
	n := j.sessions.EvictIdle(j.idle)
	if n > 0 {
		j.logger.Info("Evicted idle sessions", "count", n, "idle", j.idle)
	}
	return n
}

// Start begins the periodic eviction until ctx is done
func (j *SessionReaperJob) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				j.logger.Info("Session reaper stopped")
				return
			case <-ticker.C:
				j.RunOnce()
			}
		}
	}()
}
