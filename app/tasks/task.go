package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeWriteDigest TaskType = "write_digest"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

// TaskInterface is a unit of scheduled work. Info exposes the shared bookkeeping.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Info() *Task
}

// Task carries identity and attempt bookkeeping for a scheduled run.
type Task struct {
	ID         string
	Type       TaskType
	Attempts   int
	MaxRetries int
	StartedAt  time.Time
}

func NewTask(taskType TaskType) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) Info() *Task {
	return t
}

// Begin records the start of a new attempt.
func (t *Task) Begin() {
	t.Attempts++
	t.StartedAt = time.Now()
}

// CanRetry reports whether another attempt is allowed after the current one failed.
func (t *Task) CanRetry() bool {
	return t.Attempts <= t.MaxRetries
}

// RetryDelay doubles from one second per failed attempt, capped at maxRetryDelay.
func (t *Task) RetryDelay() time.Duration {
	if t.Attempts <= 0 {
		return 0
	}
	shift := min(t.Attempts-1, 5)
	return min(time.Second<<shift, maxRetryDelay)
}

func (t *Task) Duration() time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}
	return time.Since(t.StartedAt)
}

func (t *Task) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", t.ID),
		slog.String("type", string(t.Type)),
		slog.Int("attempt", t.Attempts),
	)
}
