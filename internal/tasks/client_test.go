package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// Verify tasks database was created
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Start client in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	// Stop should complete successfully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// TestTask is a simple task for testing
type TestTask struct {
	Value string `json:"value"`
}

func (t TestTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "test_task",
		MaxAttempts: 1,
		Backoff:     time.Second,
		Timeout:     5 * time.Second,
	}
}

func TestTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	// Create and register a test queue
	executed := make(chan string, 1)
	queue := backlite.NewQueue(func(ctx context.Context, task TestTask) error {
		executed <- task.Value
		return nil
	})
	client.Register(queue)

	// Start client
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	// Enqueue a task
	ids, err := client.Add(TestTask{Value: "hello"}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Wait for task to be executed
	select {
	case val := <-executed:
		assert.Equal(t, "hello", val)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestReconcileLikesTaskConfig(t *testing.T) {
	cfg := ReconcileLikesTask{}.Config()

	assert.Equal(t, "reconcile_likes", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestCleanupAuditEventsTaskConfig(t *testing.T) {
	cfg := CleanupAuditEventsTask{RetentionDays: 30}.Config()

	assert.Equal(t, "cleanup_audit_events", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

type fakeReconciler struct {
	fixed int64
	err   error
	calls int
}

func (f *fakeReconciler) Reconcile() (int64, error) {
	f.calls++
	return f.fixed, f.err
}

type fakeObserver struct {
	fixed int64
	err   error
	calls int
}

func (f *fakeObserver) LogReconcile(fixed int64, err error) {
	f.calls++
	f.fixed = fixed
	f.err = err
}

func TestReconcileLikesProcessor(t *testing.T) {
	t.Run("reports the outcome to the observer", func(t *testing.T) {
		reconciler := &fakeReconciler{fixed: 3}
		observer := &fakeObserver{}

		processor := ReconcileLikesProcessor(reconciler, observer)
		require.NoError(t, processor(context.Background(), ReconcileLikesTask{}))

		assert.Equal(t, 1, reconciler.calls)
		assert.Equal(t, 1, observer.calls)
		assert.Equal(t, int64(3), observer.fixed)
		assert.NoError(t, observer.err)
	})

	t.Run("propagates reconciler failures", func(t *testing.T) {
		reconciler := &fakeReconciler{err: errors.New("locked")}
		observer := &fakeObserver{}

		processor := ReconcileLikesProcessor(reconciler, observer)
		err := processor(context.Background(), ReconcileLikesTask{})
		require.Error(t, err)

		// The observer still sees the failed run
		assert.Equal(t, 1, observer.calls)
		assert.Error(t, observer.err)
	})

	t.Run("fails without a reconciler", func(t *testing.T) {
		processor := ReconcileLikesProcessor(nil, nil)
		assert.Error(t, processor(context.Background(), ReconcileLikesTask{}))
	})
}

type fakeCleaner struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeCleaner) DeleteOldEvents(olderThan time.Time) (int64, error) {
	f.cutoff = olderThan
	return f.deleted, f.err
}

func TestCleanupAuditEventsProcessor(t *testing.T) {
	t.Run("deletes events past retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 12}

		processor := CleanupAuditEventsProcessor(cleaner)
		require.NoError(t, processor(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))

		wantCutoff := time.Now().AddDate(0, 0, -7)
		assert.WithinDuration(t, wantCutoff, cleaner.cutoff, time.Minute)
	})

	t.Run("falls back to 30 days for a zero retention", func(t *testing.T) {
		cleaner := &fakeCleaner{}

		processor := CleanupAuditEventsProcessor(cleaner)
		require.NoError(t, processor(context.Background(), CleanupAuditEventsTask{}))

		wantCutoff := time.Now().AddDate(0, 0, -30)
		assert.WithinDuration(t, wantCutoff, cleaner.cutoff, time.Minute)
	})

	t.Run("propagates cleaner failures", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("locked")}

		processor := CleanupAuditEventsProcessor(cleaner)
		assert.Error(t, processor(context.Background(), CleanupAuditEventsTask{RetentionDays: 7}))
	})
}
