package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekklesia-erp/ekklesia/internal/analytics"
	jobmetrics "github.com/ekklesia-erp/ekklesia/internal/jobs"
	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

type stubWarmupService struct {
	mu         sync.Mutex
	churches   []membership.Church
	listErr    error
	failFor    uuid.UUID
	dashboards []analytics.DashboardFilter
	queries    []analytics.Query
}

func (s *stubWarmupService) ActiveChurches(context.Context) ([]membership.Church, error) {
	return s.churches, s.listErr
}

func (s *stubWarmupService) Dashboard(_ context.Context, f analytics.DashboardFilter) (analytics.Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dashboards = append(s.dashboards, f)
	if f.ChurchID == s.failFor {
		return analytics.Dashboard{}, errors.New("database unavailable")
	}
	return analytics.Dashboard{ChurchID: f.ChurchID}, nil
}

func (s *stubWarmupService) Query(_ context.Context, q analytics.Query) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return json.RawMessage(`{}`), nil
}

func newWarmupJob(svc WarmupService) *WarmupJob {
	job := NewWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC) }
	return job
}

func TestWarmupWarmsEveryActiveChurch(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	svc := &stubWarmupService{churches: []membership.Church{{ID: a}, {ID: b}}}

	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, newWarmupJob(svc).Handle(context.Background(), task))

	require.Len(t, svc.dashboards, 2)
	assert.Equal(t, a, svc.dashboards[0].ChurchID)
	assert.True(t, svc.dashboards[0].AsOf.Equal(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)))
	assert.Len(t, svc.queries, 2*len(warmedSearches))
	for _, q := range svc.queries {
		assert.Equal(t, 2025, q.Year)
	}
}

func TestWarmupSingleChurchPayload(t *testing.T) {
	target := uuid.New()
	svc := &stubWarmupService{listErr: errors.New("must not list churches")}
	asOf := time.Date(2024, 12, 29, 0, 0, 0, 0, time.UTC)

	task, err := NewWarmupTask(WarmupPayload{ChurchID: &target, AsOf: asOf})
	require.NoError(t, err)
	require.NoError(t, newWarmupJob(svc).Handle(context.Background(), task))

	require.Len(t, svc.dashboards, 1)
	assert.Equal(t, target, svc.dashboards[0].ChurchID)
	assert.True(t, svc.dashboards[0].AsOf.Equal(asOf))
	assert.Equal(t, 2024, svc.queries[0].Year)
}

func TestWarmupContinuesPastFailingChurch(t *testing.T) {
	bad, good := uuid.New(), uuid.New()
	svc := &stubWarmupService{churches: []membership.Church{{ID: bad}, {ID: good}}, failFor: bad}

	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	err = newWarmupJob(svc).Handle(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad.String())

	require.Len(t, svc.dashboards, 2)
	assert.Len(t, svc.queries, len(warmedSearches))
}

func TestWarmupRejectsMalformedPayload(t *testing.T) {
	svc := &stubWarmupService{}
	err := newWarmupJob(svc).Handle(context.Background(), asynq.NewTask(TaskMetricsWarmup, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, svc.dashboards)
}

func TestCacheBumpAdvancesVersion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := analytics.NewCache(client, time.Minute)

	ctx := context.Background()
	before, err := cache.Version(ctx)
	require.NoError(t, err)

	task, err := NewCacheBumpTask(CacheBumpPayload{Reason: "offering import"})
	require.NoError(t, err)
	require.NoError(t, NewCacheBumpJob(cache, nil, nil).Handle(ctx, task))

	after, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestCacheBumpRequiresCache(t *testing.T) {
	err := NewCacheBumpJob(nil, nil, nil).Handle(context.Background(), asynq.NewTask(TaskCacheBump, nil))
	assert.Error(t, err)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name      string
		inspector QueueInspector
		status    int
		pending   int
	}{
		{"no inspector", nil, http.StatusOK, 0},
		{"queue info", stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4}}, http.StatusOK, 4},
		{"redis down", stubInspector{err: errors.New("dial tcp")}, http.StatusServiceUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHandler(tc.inspector, nil).MountRoutes(r)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, QueueDefault, body.Queue)
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}
