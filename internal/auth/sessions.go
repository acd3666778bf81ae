package auth

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/config"
)

// SessionKeyVisitorID is the session data key holding the caller identity.
const SessionKeyVisitorID = "visitor_id"

// SessionManager wraps scs.SessionManager with visitor identity methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	// Create sessions table if it doesn't exist
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	// A long lifetime keeps the anonymous identity (and its likes) stable
	// across visits.
	sm.Lifetime = cfg.SessionLifetime

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// VisitorID returns the caller's opaque identity, assigning one on first
// use. The identity lives only in the session; there is no account record
// behind it.
func (sm *SessionManager) VisitorID(r *http.Request) (string, error) {
	if id := sm.GetString(r.Context(), SessionKeyVisitorID); id != "" {
		return id, nil
	}

	id, err := GenerateVisitorID()
	if err != nil {
		return "", err
	}
	sm.Put(r.Context(), SessionKeyVisitorID, id)
	return id, nil
}

// IdentityMiddleware resolves the visitor identity for every request and
// stores it in the Gin context. Must run after SessionLoadSave.
func (sm *SessionManager) IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := sm.VisitorID(c.Request)
		if err != nil {
			// An identity-less caller can still read the feed; only the
			// like endpoint insists on one.
			c.Next()
			return
		}
		c.Set(ContextKeyUserID, id)
		c.Next()
	}
}
