package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ekklesia-erp/ekklesia/internal/jobs"
)

// CacheBumper invalidates the report cache.
type CacheBumper interface {
	Bump(ctx context.Context) (int64, error)
}

// CacheBumpJob invalidates cached reports after records change elsewhere.
type CacheBumpJob struct {
	Cache   CacheBumper
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCacheBumpJob wires dependencies for the cache bump handler.
func NewCacheBumpJob(cache CacheBumper, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheBumpJob {
	return &CacheBumpJob{Cache: cache, Logger: logger, Metrics: metrics}
}

// Handle processes cache bump tasks.
func (j *CacheBumpJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Cache == nil {
		return errors.New("cache bump: handler not configured")
	}
	var payload CacheBumpPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("cache bump: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskCacheBump)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	version, err := j.Cache.Bump(ctx)
	if err != nil {
		return err
	}
	metrics.CacheBumped()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("report cache bumped", slog.String("job", TaskCacheBump), slog.String("reason", payload.Reason), slog.Int64("version", version))
	return nil
}
