package ports

import (
	"context"
	"time"
)

// FinishTask is the payload of a scheduled poll timeout. It is carried
// verbatim by the scheduler and must be sufficient on its own to invoke
// the finish transition later.
type FinishTask struct {
	PollID    string `json:"poll_id"`
	CreatorID string `json:"creator_id"`
}

// Scheduler registers one-shot callbacks. Delivery is best effort; a
// failed firing is reported by the adapter, never retried.
type Scheduler interface {
	ScheduleOnce(ctx context.Context, task FinishTask, when time.Time) error
}

// Notifier delivers a private message to a single user. Failures of the
// core's operations are surfaced this way, never broadcast to the room.
type Notifier interface {
	NotifyUser(ctx context.Context, userID, text string) error
}
