package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/entities"
)

// AuditStore defines database operations for reading the audit trail.
type AuditStore interface {
	GetEvents(actorID string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	store AuditStore
}

func NewAuditController(store AuditStore) *AuditController {
	return &AuditController{store: store}
}

// ListEvents returns recent curation and maintenance events.
// GET /api/audit?limit=50&offset=0&type=delete (admin)
func (ac *AuditController) ListEvents(c *gin.Context) {
	limit := 50
	offset := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.store.GetEventsByType(entities.AuditEventType(eventType), limit, offset)
	} else {
		events, total, err = ac.store.GetEvents(c.Query("actor"), limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
		"data":    events,
	})
}
