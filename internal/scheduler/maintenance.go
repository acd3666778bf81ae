// Package scheduler triggers periodic maintenance: like counter
// reconciliation and audit trail cleanup.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quoteshelf/quoteshelf/internal/tasks"
)

// MaintenanceScheduler enqueues maintenance tasks on a cron schedule.
// The actual work runs on the task queue workers, so a slow reconciliation
// never blocks the scheduler.
type MaintenanceScheduler struct {
	taskClient    *tasks.Client
	schedule      string
	retentionDays int

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a new scheduler instance.
func NewMaintenanceScheduler(taskClient *tasks.Client, schedule string, retentionDays int) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		taskClient:    taskClient,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *MaintenanceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.taskClient == nil {
		return fmt.Errorf("task client not configured")
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.enqueueMaintenance)
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started with schedule '%s'. Next run: %v",
		s.schedule, s.nextRunLocked())
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	log.Printf("Maintenance scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next maintenance run will occur.
func (s *MaintenanceScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	t := s.nextRunLocked()
	if t.IsZero() {
		return nil
	}
	return &t
}

func (s *MaintenanceScheduler) nextRunLocked() time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			return entry.Next
		}
	}
	return time.Time{}
}

func (s *MaintenanceScheduler) enqueueMaintenance() {
	if _, err := s.taskClient.Add(tasks.ReconcileLikesTask{}).Save(); err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue reconciliation: %v", err)
	}
	if _, err := s.taskClient.Add(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays}).Save(); err != nil {
		log.Printf("Maintenance scheduler: failed to enqueue audit cleanup: %v", err)
	}
}
