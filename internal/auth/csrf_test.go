package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfRouter(t *testing.T, adminTokenHash string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	secret := []byte("test-secret-key-32-bytes-long!!!")
	router := gin.New()
	router.Use(CSRFMiddleware(secret, false, adminTokenHash))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware_AllowsGET(t *testing.T) {
	router := csrfRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(CSRFTokenHeader), "GET responses expose a token for later mutations")
}

func TestCSRFMiddleware_BlocksPOSTWithoutToken(t *testing.T) {
	router := csrfRouter(t, "")

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "CSRF token invalid or missing")
}

func TestCSRFMiddleware_AllowsPOSTWithToken(t *testing.T) {
	router := csrfRouter(t, "")

	// Fetch a token and the csrf cookie first
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	token := w.Header().Get(CSRFTokenHeader)
	require.NotEmpty(t, token)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set(CSRFTokenHeader, token)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddleware_SkipsValidBearerAuth(t *testing.T) {
	hash, err := HashAdminToken("admin-token")
	require.NoError(t, err)
	router := csrfRouter(t, hash)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFMiddleware_InvalidBearerStillChecked(t *testing.T) {
	hash, err := HashAdminToken("admin-token")
	require.NoError(t, err)
	router := csrfRouter(t, hash)

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFErrorHandler(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	csrfErrorHandler(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
