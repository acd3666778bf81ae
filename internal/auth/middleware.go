package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys for caller data
const (
	ContextKeyUserID  = "auth_user_id"
	ContextKeyIsAdmin = "auth_is_admin"
)

// GetUserID extracts the caller's opaque identity from the Gin context.
// Returns "" when no identity was resolved.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// IsAdmin reports whether the request carries verified admin credentials.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsAdmin)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" when absent.
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// HasValidAdminToken reports whether the request presents a bearer token
// matching the configured hash.
func HasValidAdminToken(r *http.Request, adminTokenHash string) bool {
	if adminTokenHash == "" {
		return false
	}
	token := bearerToken(r)
	if token == "" {
		return false
	}
	return CheckAdminToken(token, adminTokenHash) == nil
}

// AdminMiddleware guards curation endpoints. With no admin token hash
// configured, every admin endpoint is disabled rather than open.
func AdminMiddleware(adminTokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminTokenHash == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"message":  "admin access is not configured",
				"category": "internal",
			})
			return
		}

		token := bearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":  false,
				"message":  "authentication required",
				"category": "validation",
			})
			return
		}

		if err := CheckAdminToken(token, adminTokenHash); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"message":  "admin access required",
				"category": "validation",
			})
			return
		}

		c.Set(ContextKeyIsAdmin, true)
		c.Next()
	}
}
