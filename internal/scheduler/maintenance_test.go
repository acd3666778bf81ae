package scheduler

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteshelf/quoteshelf/internal/tasks"
)

func newTestClient(t *testing.T) *tasks.Client {
	t.Helper()
	cfg := tasks.DefaultConfig()
	cfg.Workers = 1

	client, err := tasks.NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	scheduler := NewMaintenanceScheduler(newTestClient(t), "*/30 * * * *", 30)

	assert.False(t, scheduler.IsRunning())
	assert.Nil(t, scheduler.NextRunTime())

	require.NoError(t, scheduler.Start())
	assert.True(t, scheduler.IsRunning())

	next := scheduler.NextRunTime()
	require.NotNil(t, next)
	assert.False(t, next.IsZero())

	// A second Start is a no-op
	require.NoError(t, scheduler.Start())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
	assert.Nil(t, scheduler.NextRunTime())

	// Stop when already stopped is harmless
	scheduler.Stop()
}

func TestMaintenanceScheduler_InvalidSchedule(t *testing.T) {
	scheduler := NewMaintenanceScheduler(newTestClient(t), "not a schedule", 30)

	assert.Error(t, scheduler.Start())
	assert.False(t, scheduler.IsRunning())
}

func TestMaintenanceScheduler_NoTaskClient(t *testing.T) {
	scheduler := NewMaintenanceScheduler(nil, "*/30 * * * *", 30)
	assert.Error(t, scheduler.Start())
}
