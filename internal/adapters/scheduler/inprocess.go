// Package scheduler provides an in-process one-shot scheduler for poll
// timeouts.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vncsmyrnk/chatpoll/internal/core/ports"
)

// FinishFunc is invoked when a scheduled poll timeout fires.
type FinishFunc func(ctx context.Context, task ports.FinishTask) error

// InProcess keeps one timer per poll id. Firing is best effort: if the
// finish attempt fails (for instance the poll was already finished
// manually), the failure is logged and the task is dropped, never
// retried. Pending timers do not survive a process restart.
type InProcess struct {
	finish  FinishFunc
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewInProcess(finish FinishFunc, logger *slog.Logger) *InProcess {
	return &InProcess{
		finish:  finish,
		logger:  logger,
		timeout: 30 * time.Second,
		timers:  make(map[string]*time.Timer),
	}
}

func (s *InProcess) ScheduleOnce(ctx context.Context, task ports.FinishTask, when time.Time) error {
	d := time.Until(when)
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[task.PollID]; ok {
		t.Stop()
	}
	s.timers[task.PollID] = time.AfterFunc(d, func() {
		s.fire(task)
	})
	return nil
}

// Stop cancels all pending timers. Tasks that already fired are not
// affected.
func (s *InProcess) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *InProcess) fire(task ports.FinishTask) {
	s.mu.Lock()
	delete(s.timers, task.PollID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.finish(ctx, task); err != nil {
		s.logger.Warn("scheduled poll finish failed",
			"poll_id", task.PollID,
			"error", err,
		)
		return
	}
	s.logger.Info("poll finished on schedule", "poll_id", task.PollID)
}
