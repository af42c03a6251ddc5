package collector

import (
	"context"
	"sync"
	"time"

	"github.com/mev-engine/atomic-arb-engine/pkg/interfaces"
	"go.uber.org/zap"
)

// HeartbeatTimeout is how long a task may go without advancing its
// heartbeat before the supervisor considers it dead.
const HeartbeatTimeout = 10 * time.Second

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// Supervisor restarts each CollectorTask independently on failure with
// a bounded exponential backoff, and reports whether all tasks are
// currently dead (no heartbeat advance within HeartbeatTimeout).
type Supervisor struct {
	logger *zap.Logger

	mu    sync.RWMutex
	tasks []interfaces.CollectorTask
}

// NewSupervisor returns a Supervisor over the given tasks.
func NewSupervisor(logger *zap.Logger, tasks ...interfaces.CollectorTask) *Supervisor {
	return &Supervisor{logger: logger, tasks: tasks}
}

// Run launches every task and keeps restarting each independently until
// ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	s.mu.RLock()
	tasks := append([]interfaces.CollectorTask(nil), s.tasks...)
	s.mu.RUnlock()

	for _, task := range tasks {
		wg.Add(1)
		go func(t interfaces.CollectorTask) {
			defer wg.Done()
			s.runWithRestart(ctx, t)
		}(task)
	}
	wg.Wait()
}

func (s *Supervisor) runWithRestart(ctx context.Context, task interfaces.CollectorTask) {
	backoff := minBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		err := task.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			// A task returning nil without ctx cancellation is treated as
			// a clean, permanent exit.
			return
		}

		if s.logger != nil {
			s.logger.Warn("collector task failed, restarting", zap.String("task", task.Name()), zap.Error(err), zap.Duration("backoff", backoff))
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// AllDead reports whether every supervised task's heartbeat has stalled
// beyond HeartbeatTimeout as of now. Nothing in this module calls it:
// the orchestrator does not consult collector heartbeats, and its only
// gate on scanning is the freshness of the cached snapshots.
func (s *Supervisor) AllDead(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.tasks) == 0 {
		return false
	}
	for _, t := range s.tasks {
		if now.Sub(t.LastHeartbeat()) < HeartbeatTimeout {
			return false
		}
	}
	return true
}
