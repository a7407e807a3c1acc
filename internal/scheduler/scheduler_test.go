package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/finlens/backend/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(context.Context) error {
	n := atomic.AddInt32(&j.calls, 1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 6 * * *"}))
	assert.Error(t, s.AddJob(&countingJob{name: "a", schedule: "0 0 6 * * *"}), "duplicate name")
	assert.Error(t, s.AddJob(&countingJob{name: "b", schedule: "every day"}), "bad cron spec")

	assert.Equal(t, []string{"a"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
}

func TestRunJob_RetriesThenSucceeds(t *testing.T) {
	s := New(logger.Nop(), WithRetry(2, 0))
	job := &countingJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob(context.Background(), "flaky"))
	assert.Equal(t, int32(3), job.calls)

	stats := s.GetJobStats()["flaky"]
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 0, stats.Failures)
	require.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	assert.Nil(t, stats.LastFailure)
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetry(1, 0))
	job := &countingJob{name: "broken", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	err := s.RunJob(context.Background(), "broken")
	require.Error(t, err)
	assert.Equal(t, int32(2), job.calls)

	history, err := s.GetJobHistory("broken")
	require.NoError(t, err)
	require.Len(t, history.Results, 1)
	assert.False(t, history.Results[0].Success)
	assert.Equal(t, "transient", history.Results[0].Error)
	assert.Equal(t, 2, history.Results[0].Attempts)
	assert.Equal(t, 0.0, history.Summary().SuccessRate)
}

func TestRunJob_Unknown(t *testing.T) {
	assert.Error(t, New(logger.Nop()).RunJob(context.Background(), "nope"))
}

func TestJobHistory_Bounded(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < maxHistory+10; i++ {
		h.add(JobResult{Success: i%2 == 0, StartTime: time.Unix(int64(i), 0)})
	}
	assert.Len(t, h.Results, maxHistory)

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, time.Unix(int64(maxHistory+9), 0), last.StartTime)

	sum := h.Summary()
	assert.Equal(t, maxHistory, sum.Runs)
	assert.InDelta(t, 0.5, sum.SuccessRate, 1e-9)
	assert.Equal(t, time.Unix(int64(maxHistory+9), 0), *sum.LastFailure)
	assert.Equal(t, time.Unix(int64(maxHistory+8), 0), *sum.LastSuccess)
}
