package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/logger"
	"github.com/angelmondragon/pressreach-backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type countingJob struct {
	name string
	err  error
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

type failingLock struct{}

func (failingLock) Acquire(context.Context) (bool, error) { return false, errors.New("redis down") }
func (failingLock) Release(context.Context) error         { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func TestRunOnceRunsEveryJobAndCombinesErrors(t *testing.T) {
	ok := &countingJob{name: "ok"}
	bad := &countingJob{name: "bad", err: errors.New("boom")}
	worse := &countingJob{name: "worse", err: errors.New("bang")}
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(ok, bad, worse),
		Lock:     NewLocalLock(),
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	err = svc.RunOnce(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorContains(t, err, "bad: boom")
	assert.Equal(t, 1, ok.runs)
	assert.Equal(t, 1, bad.runs)
	assert.Equal(t, 1, worse.runs)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	assert.True(t, names["pressreach_cron_job_success_total"])
	assert.True(t, names["pressreach_cron_job_failure_total"])
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "job"}
	lock := NewLocalLock()
	held, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, held)

	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: lock, Metrics: metrics.NewCronJobMetrics(reg)})
	require.NoError(t, err)
	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Zero(t, job.runs)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "pressreach_cron_cycles_skipped_total"))

	require.NoError(t, lock.Release(context.Background()))
	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Equal(t, 1, job.runs)

	again, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, again, "RunOnce releases the lock")
}

func TestRunOnceLockError(t *testing.T) {
	job := &countingJob{name: "job"}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: failingLock{}})
	require.NoError(t, err)
	require.ErrorContains(t, svc.RunOnce(context.Background()), "redis down")
	assert.Zero(t, job.runs)
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &countingJob{name: "job"}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: NewRegistry(job), Lock: NewLocalLock(), Interval: time.Hour})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, svc.Run(ctx), context.Canceled)
	assert.Equal(t, 1, job.runs, "first cycle runs before waiting")
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(ServiceParams{Lock: NewLocalLock()})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Logger: testLogger()})
	require.Error(t, err)
}
