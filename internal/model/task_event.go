package model

import "time"

const (
	TaskEventCreated = "created"
	TaskEventUpdated = "updated"
	TaskEventDeleted = "deleted"
)

// TaskEvent is published to the broker after every task mutation so the
// cache invalidation worker can drop the owner's cached list. Events are
// transient; they are never persisted.
type TaskEvent struct {
	Type       string    `json:"type"`
	TaskID     uint      `json:"task_id"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
