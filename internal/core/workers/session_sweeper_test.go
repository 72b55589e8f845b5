package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSessions struct {
	mu      sync.Mutex
	cutoffs []time.Time
	closed  int
}

func (f *fakeSessions) CloseIdle(cutoff time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.closed
}

func (f *fakeSessions) Active() int { return 0 }

func (f *fakeSessions) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestSessionSweeper_Sweep(t *testing.T) {
	sessions := &fakeSessions{closed: 3}
	w := NewSessionSweeper(sessions, time.Minute, 2*time.Hour, zap.NewNop())

	fixed := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	assert.Equal(t, 3, w.Sweep())
	require.Len(t, sessions.cutoffs, 1)
	assert.Equal(t, fixed.Add(-2*time.Hour), sessions.cutoffs[0])
}

func TestSessionSweeper_StartStops(t *testing.T) {
	sessions := &fakeSessions{}
	w := NewSessionSweeper(sessions, 5*time.Millisecond, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := w.Start(ctx)

	assert.Eventually(t, func() bool { return sessions.calls() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
