// Package audit records who changed the curated catalogue and when.
package audit

import (
	"encoding/json"
	"log"

	"github.com/quoteshelf/quoteshelf/internal/database/audit"
	"github.com/quoteshelf/quoteshelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogQuoteCreate records creation of a quote by an admin.
func (s *Service) LogQuoteCreate(actorID string, quote *entities.Quote) {
	quoteID := quote.ID
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventCreate,
		Action:      "quote_create",
		Description: "Created quote from " + quote.BookTitle,
		EntityType:  "quote",
		EntityID:    &quoteID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogQuoteUpdate records an admin edit of a quote.
func (s *Service) LogQuoteUpdate(actorID string, quoteID uint, changedFields []string) {
	event := &entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventUpdate,
		Action:      "quote_update",
		Description: "Updated quote",
		EntityType:  "quote",
		EntityID:    &quoteID,
		Status:      entities.AuditStatusSuccess,
	}

	if len(changedFields) > 0 {
		if mdBytes, err := json.Marshal(map[string]any{"fields": changedFields}); err == nil {
			event.Metadata = string(mdBytes)
		}
	}

	s.LogAsync(event)
}

// LogQuoteDelete records a hard delete of a quote and its like relations.
func (s *Service) LogQuoteDelete(actorID string, quoteID uint, bookTitle string) {
	s.LogAsync(&entities.AuditEvent{
		ActorID:     actorID,
		EventType:   entities.AuditEventDelete,
		Action:      "quote_delete",
		Description: "Deleted quote from " + bookTitle,
		EntityType:  "quote",
		EntityID:    &quoteID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogReconcile records a run of the like counter reconciliation.
func (s *Service) LogReconcile(fixed int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      "likes_reconcile",
		Description: "Reconciled cached like counters against the ledger",
		EntityType:  "quote",
		Status:      entities.AuditStatusSuccess,
	}

	if mdBytes, e := json.Marshal(map[string]any{"corrected": fixed}); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
