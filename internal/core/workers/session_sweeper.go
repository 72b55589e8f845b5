package workers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCloser is the part of the session registry the sweeper needs.
type SessionCloser interface {
	CloseIdle(cutoff time.Time) int
	Active() int
}

// SessionSweeper periodically drops diary sessions that have been idle for
// longer than maxIdle, so cached days of users who never sign out are freed.
type SessionSweeper struct {
	sessions SessionCloser
	interval time.Duration
	maxIdle  time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionSweeper(sessions SessionCloser, interval, maxIdle time.Duration, logger *zap.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		interval: interval,
		maxIdle:  maxIdle,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the sweep loop until ctx is cancelled. The returned channel is
// closed once the loop has exited.
func (w *SessionSweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("session sweeper started",
			zap.Duration("interval", w.interval),
			zap.Duration("max_idle", w.maxIdle))

		for {
			select {
			case <-ticker.C:
				w.Sweep()
			case <-ctx.Done():
				w.logger.Info("session sweeper shutting down")
				return
			}
		}
	}()

	return done
}

// Sweep closes idle sessions once and reports how many were closed.
func (w *SessionSweeper) Sweep() int {
	closed := w.sessions.CloseIdle(w.now().Add(-w.maxIdle))
	if closed > 0 {
		w.logger.Info("closed idle sessions",
			zap.Int("closed", closed),
			zap.Int("active", w.sessions.Active()))
	}
	return closed
}
