package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMetricsWarmup precomputes dashboards and headline reports.
	TaskMetricsWarmup = "metrics:warmup"
	// TaskCacheBump invalidates every cached report.
	TaskCacheBump = "metrics:cache_bump"
)

// WarmupPayload scopes a warmup run. A nil ChurchID warms every active church
// and a zero AsOf means the time the task runs.
type WarmupPayload struct {
	ChurchID *uuid.UUID `json:"church_id,omitempty"`
	AsOf     time.Time  `json:"as_of,omitempty"`
}

// CacheBumpPayload records why the cache is being invalidated.
type CacheBumpPayload struct {
	Reason string `json:"reason"`
}

// NewWarmupTask constructs a warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode warmup payload: %w", err)
	}
	return asynq.NewTask(TaskMetricsWarmup, data, asynq.MaxRetry(2), asynq.Timeout(10*time.Minute)), nil
}

// NewCacheBumpTask constructs a cache invalidation task.
func NewCacheBumpTask(payload CacheBumpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("jobs: encode cache bump payload: %w", err)
	}
	return asynq.NewTask(TaskCacheBump, data, asynq.MaxRetry(5)), nil
}
