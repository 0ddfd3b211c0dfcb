// Package cli implements the operator subcommands of the ekklesia binary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ekklesia-erp/ekklesia/jobs"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
	Close() error
}

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    enqueuer
	inspector queueInspector
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) *JobsCLI {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	return &JobsCLI{client: asynq.NewClient(opts), inspector: asynq.NewInspector(opts)}
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var errs []error
	if c.inspector != nil {
		errs = append(errs, c.inspector.Close())
	}
	if c.client != nil {
		errs = append(errs, c.client.Close())
	}
	return errors.Join(errs...)
}

// TriggerOptions narrows a manually triggered task.
type TriggerOptions struct {
	ChurchID *uuid.UUID
	AsOf     time.Time
	Reason   string
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, opts TriggerOptions) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	var (
		task *asynq.Task
		err  error
	)
	switch name {
	case jobs.TaskMetricsWarmup:
		task, err = jobs.NewWarmupTask(jobs.WarmupPayload{ChurchID: opts.ChurchID, AsOf: opts.AsOf})
	case jobs.TaskCacheBump:
		reason := opts.Reason
		if reason == "" {
			reason = "manual"
		}
		task, err = jobs.NewCacheBumpTask(jobs.CacheBumpPayload{Reason: reason})
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the queue metrics for the default queue.
func (c *JobsCLI) InspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Pending = info.Pending
		stats.Active = info.Active
		stats.Scheduled = info.Scheduled
		stats.Retry = info.Retry
	}
	return stats, nil
}

// Run executes `jobs trigger <task> [flags]` or `jobs stats`.
func (c *JobsCLI) Run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: jobs trigger <task> [-church id] [-as-of YYYY-MM-DD] [-reason text] | jobs stats")
	}
	switch args[0] {
	case "stats":
		stats, err := c.InspectQueue()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return err
	case "trigger":
		fs := flag.NewFlagSet("jobs trigger", flag.ContinueOnError)
		fs.SetOutput(out)
		church := fs.String("church", "", "church id to warm; all active churches when empty")
		asOf := fs.String("as-of", "", "reference date for the dashboard")
		reason := fs.String("reason", "", "reason recorded with a cache bump")
		if len(args) < 2 {
			return errors.New("jobs trigger: task name required")
		}
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		opts := TriggerOptions{Reason: *reason}
		if *church != "" {
			id, err := uuid.Parse(*church)
			if err != nil {
				return fmt.Errorf("jobs trigger: church: %w", err)
			}
			opts.ChurchID = &id
		}
		if *asOf != "" {
			t, err := time.Parse("2006-01-02", *asOf)
			if err != nil {
				return fmt.Errorf("jobs trigger: as-of: %w", err)
			}
			opts.AsOf = t
		}
		info, err := c.Trigger(ctx, args[1], opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return err
	default:
		return fmt.Errorf("jobs: unknown command %q", args[0])
	}
}
