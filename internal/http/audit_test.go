package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteshelf/quoteshelf/internal/entities"
)

func logTestEvent(t *testing.T, api *testAPI, actorID string, eventType entities.AuditEventType, action string) {
	t.Helper()
	require.NoError(t, api.auditRepo.LogEvent(&entities.AuditEvent{
		ActorID:   actorID,
		EventType: eventType,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
	}))
}

func TestListAuditEvents(t *testing.T) {
	t.Run("returns the trail with totals", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		logTestEvent(t, api, "admin", entities.AuditEventCreate, "quote_create")
		logTestEvent(t, api, "admin", entities.AuditEventDelete, "quote_delete")
		logTestEvent(t, api, "system", entities.AuditEventMaintenance, "likes_reconcile")

		w := api.request(t, http.MethodGet, "/api/audit", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.EqualValues(t, 3, body["total"])
		assert.EqualValues(t, 50, body["limit"])
		assert.Len(t, body["data"], 3)
	})

	t.Run("filters by type", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		logTestEvent(t, api, "admin", entities.AuditEventCreate, "quote_create")
		logTestEvent(t, api, "system", entities.AuditEventMaintenance, "likes_reconcile")

		w := api.request(t, http.MethodGet, "/api/audit?type=maintenance", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.EqualValues(t, 1, body["total"])
	})

	t.Run("filters by actor", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		logTestEvent(t, api, "admin", entities.AuditEventCreate, "quote_create")
		logTestEvent(t, api, "system", entities.AuditEventMaintenance, "likes_reconcile")

		w := api.request(t, http.MethodGet, "/api/audit?actor=system", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.EqualValues(t, 1, body["total"])
	})

	t.Run("clamps limit to 200", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		w := api.request(t, http.MethodGet, "/api/audit?limit=5000", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.EqualValues(t, 50, body["limit"])
	})
}
