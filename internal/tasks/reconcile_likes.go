package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// LikeReconciler provides the ability to rewrite cached like counters from
// the like ledger.
type LikeReconciler interface {
	Reconcile() (int64, error)
}

// ReconcileObserver is notified with the outcome of a reconciliation run.
type ReconcileObserver interface {
	LogReconcile(fixed int64, err error)
}

// ReconcileLikesTask replays the like ledger into the quotes' cached
// counters, repairing any drift.
type ReconcileLikesTask struct{}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileLikesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile_likes",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileLikesProcessor creates a processor function for ReconcileLikesTask.
func ReconcileLikesProcessor(reconciler LikeReconciler, observer ReconcileObserver) backlite.QueueProcessor[ReconcileLikesTask] {
	return func(ctx context.Context, task ReconcileLikesTask) error {
		if reconciler == nil {
			return fmt.Errorf("like reconciler not configured")
		}

		fixed, err := reconciler.Reconcile()
		if observer != nil {
			observer.LogReconcile(fixed, err)
		}
		if err != nil {
			return fmt.Errorf("reconcile likes: %w", err)
		}

		log.Printf("[TASK] Reconciled like counters, corrected %d quotes", fixed)
		return nil
	}
}

// NewReconcileLikesQueue creates a backlite queue for reconciliation tasks.
func NewReconcileLikesQueue(reconciler LikeReconciler, observer ReconcileObserver) backlite.Queue {
	return backlite.NewQueue(ReconcileLikesProcessor(reconciler, observer))
}
