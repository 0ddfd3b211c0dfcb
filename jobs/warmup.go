package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ekklesia-erp/ekklesia/internal/analytics"
	jobmetrics "github.com/ekklesia-erp/ekklesia/internal/jobs"
	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// churchTimeout bounds the work done for a single church.
const churchTimeout = 30 * time.Second

// warmedSearches are the reports the dashboard screens open with.
var warmedSearches = []analytics.SearchType{
	analytics.MembersByProportion,
	analytics.MembersByCategory,
	analytics.FamilyGroupsByProportion,
	analytics.IncomeByProportion,
	analytics.ExpensesByProportion,
}

// WarmupService is the analytics surface the warmup job drives.
type WarmupService interface {
	ActiveChurches(ctx context.Context) ([]membership.Church, error)
	Dashboard(ctx context.Context, filter analytics.DashboardFilter) (analytics.Dashboard, error)
	Query(ctx context.Context, q analytics.Query) (json.RawMessage, error)
}

// WarmupJob pre-populates the report cache for active churches.
type WarmupJob struct {
	Service WarmupService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(service WarmupService, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes metrics warmup tasks. A church that fails is logged and
// skipped; the run reports every failure once all churches were tried.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Service == nil {
		return errors.New("metrics warmup: handler not configured")
	}
	var payload WarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("metrics warmup: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	tracker := j.metrics().Track(TaskMetricsWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	asOf := payload.AsOf
	if asOf.IsZero() {
		asOf = start
	}
	logger := j.logger().With(slog.String("as_of", asOf.Format("2006-01-02")))
	logger.Info("starting metrics warmup")

	churches, err := j.targets(ctx, payload)
	if err != nil {
		logger.Error("load warmup churches", slog.Any("error", err))
		return err
	}
	if len(churches) == 0 {
		logger.Info("no churches to warm")
		return nil
	}

	var failures []error
	for _, church := range churches {
		if err := ctx.Err(); err != nil {
			return err
		}
		warmed, err := j.warmChurch(ctx, church.ID, asOf)
		j.metrics().AddWarmed("ok", warmed)
		if err != nil {
			j.metrics().AddWarmed("error", 1)
			logger.Error("warm church", slog.String("church_id", church.ID.String()), slog.Any("error", err))
			failures = append(failures, fmt.Errorf("church %s: %w", church.ID, err))
		}
	}

	logger.Info("completed metrics warmup",
		slog.Int("churches", len(churches)),
		slog.Int("failed", len(failures)),
		slog.Duration("duration", j.now().Sub(start)),
	)
	return errors.Join(failures...)
}

func (j *WarmupJob) targets(ctx context.Context, payload WarmupPayload) ([]membership.Church, error) {
	if payload.ChurchID != nil {
		return []membership.Church{{ID: *payload.ChurchID}}, nil
	}
	return j.Service.ActiveChurches(ctx)
}

// warmChurch returns how many reports it stored before the first failure.
func (j *WarmupJob) warmChurch(ctx context.Context, churchID uuid.UUID, asOf time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, churchTimeout)
	defer cancel()

	if _, err := j.Service.Dashboard(ctx, analytics.DashboardFilter{ChurchID: churchID, AsOf: asOf}); err != nil {
		return 0, err
	}
	warmed := 1
	for _, st := range warmedSearches {
		q := analytics.Query{SearchType: st, ChurchID: churchID, Year: asOf.Year()}
		if _, err := j.Service.Query(ctx, q); err != nil {
			return warmed, fmt.Errorf("%s: %w", st, err)
		}
		warmed++
	}
	return warmed, nil
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMetricsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskMetricsWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *WarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
