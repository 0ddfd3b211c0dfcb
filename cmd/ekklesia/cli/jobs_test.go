package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekklesia-erp/ekklesia/jobs"
)

type stubClient struct {
	tasks []*asynq.Task
}

func (s *stubClient) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

func (s *stubClient) Close() error { return nil }

type stubInspector struct{}

func (stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) {
	return &asynq.QueueInfo{Queue: jobs.QueueDefault, Pending: 2, Retry: 1}, nil
}

func (stubInspector) Close() error { return nil }

func TestRunTriggerWarmupForChurch(t *testing.T) {
	client := &stubClient{}
	c := &JobsCLI{client: client, inspector: stubInspector{}}
	out := &bytes.Buffer{}

	err := c.Run(context.Background(), []string{"trigger", jobs.TaskMetricsWarmup,
		"-church", "6f1d8a52-3b0e-4a8c-a7c1-2e9b5d4f6a10", "-as-of", "2025-03-02"}, out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "enqueued metrics:warmup")

	require.Len(t, client.tasks, 1)
	var payload jobs.WarmupPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	require.NotNil(t, payload.ChurchID)
	assert.Equal(t, "6f1d8a52-3b0e-4a8c-a7c1-2e9b5d4f6a10", payload.ChurchID.String())
	assert.True(t, payload.AsOf.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestRunTriggerCacheBumpDefaultsReason(t *testing.T) {
	client := &stubClient{}
	c := &JobsCLI{client: client}
	require.NoError(t, c.Run(context.Background(), []string{"trigger", jobs.TaskCacheBump}, &bytes.Buffer{}))

	var payload jobs.CacheBumpPayload
	require.NoError(t, json.Unmarshal(client.tasks[0].Payload(), &payload))
	assert.Equal(t, "manual", payload.Reason)
}

func TestRunRejectsBadInput(t *testing.T) {
	c := &JobsCLI{client: &stubClient{}, inspector: stubInspector{}}
	ctx := context.Background()
	assert.Error(t, c.Run(ctx, nil, &bytes.Buffer{}))
	assert.Error(t, c.Run(ctx, []string{"trigger"}, &bytes.Buffer{}))
	assert.Error(t, c.Run(ctx, []string{"trigger", "mail:send"}, &bytes.Buffer{}))
	assert.Error(t, c.Run(ctx, []string{"trigger", jobs.TaskMetricsWarmup, "-church", "abc"}, &bytes.Buffer{}))
	assert.Error(t, c.Run(ctx, []string{"purge"}, &bytes.Buffer{}))
}

func TestRunStats(t *testing.T) {
	c := &JobsCLI{client: &stubClient{}, inspector: stubInspector{}}
	out := &bytes.Buffer{}
	require.NoError(t, c.Run(context.Background(), []string{"stats"}, out))
	assert.Equal(t, "queue=default pending=2 active=0 scheduled=0 retry=1\n", out.String())
}
