package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quoteshelf/quoteshelf/internal/entities"
)

func TestToggleLike(t *testing.T) {
	t.Run("likes then unlikes", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		quote := api.createQuote(t, "toggleable", entities.CategoryFiction)

		w := api.request(t, http.MethodPost, "/api/quotes/"+itoa(quote.ID)+"/like", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["liked"])
		assert.Equal(t, "Quote liked successfully", body["message"])

		stored, err := api.quotesRepo.GetActive(quote.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.Likes)

		w = api.request(t, http.MethodPost, "/api/quotes/"+itoa(quote.ID)+"/like", nil)
		require.Equal(t, http.StatusOK, w.Code)
		body = decodeBody(t, w)
		assert.Equal(t, false, body["liked"])
		assert.Equal(t, "Quote unliked successfully", body["message"])

		stored, err = api.quotesRepo.GetActive(quote.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), stored.Likes)
	})

	t.Run("404 for missing quote", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		w := api.request(t, http.MethodPost, "/api/quotes/9999/like", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "not_found", body["category"])
	})

	t.Run("400 for non-numeric id", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		w := api.request(t, http.MethodPost, "/api/quotes/abc/like", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("401 without a caller identity", func(t *testing.T) {
		api, cleanup := setupAPI(t)
		defer cleanup()

		quote := api.createQuote(t, "anonymous", entities.CategoryFiction)

		// A router without the identity middleware simulates a request where
		// no session could be established.
		gin.SetMode(gin.TestMode)
		bare := gin.New()
		bare.POST("/api/quotes/:id/like", NewLikesController(api.likesRepo).ToggleLike)

		req := httptest.NewRequest(http.MethodPost, "/api/quotes/"+itoa(quote.ID)+"/like", nil)
		w := httptest.NewRecorder()
		bare.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "caller identity required", body["message"])
	})
}
