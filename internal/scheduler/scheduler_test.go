package scheduler_test

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-John/createrington-sub002/internal/scheduler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddRejectsDuplicateNames(t *testing.T) {
	s := scheduler.New(quietLogger())

	require.NoError(t, s.Add("playtime-sync", "@every 5m", func() {}))
	err := s.Add("playtime-sync", "@every 10m", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playtime-sync")
}

func TestAddRejectsInvalidSpec(t *testing.T) {
	s := scheduler.New(quietLogger())
	require.Error(t, s.Add("broken", "not a cron spec", func() {}))
}

func TestJobs(t *testing.T) {
	s := scheduler.New(quietLogger())
	require.NoError(t, s.Add("a", "@hourly", func() {}))
	require.NoError(t, s.Add("b", "@daily", func() {}))

	assert.ElementsMatch(t, []string{"a", "b"}, s.Jobs())
}

func TestJobRunsAndShutdownWaits(t *testing.T) {
	s := scheduler.New(quietLogger())

	var runs atomic.Int32
	require.NoError(t, s.Add("tick", "@every 50ms", func() {
		runs.Add(1)
	}))
	s.Start()

	require.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))

	settled := runs.Load()
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, settled, runs.Load())
}
