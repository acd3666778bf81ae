package http

import (
	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/audit"
	"github.com/quoteshelf/quoteshelf/internal/auth"
	"github.com/quoteshelf/quoteshelf/internal/database"
)

// RouterConfig carries all router dependencies, improving testability and
// keeping NewRouter's signature stable as wiring grows.
type RouterConfig struct {
	Database   *database.Database
	QuoteStore QuoteStore
	LikeLedger LikeLedger
	AuditStore AuditStore
	Auditor    *audit.Service

	SessionManager *auth.SessionManager
	AdminTokenHash string
	CSRFSecret     []byte
	SecureCookies  bool

	DefaultPageSize int
	MaxPageSize     int

	Version string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AdminTokenHash))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
		router.Use(cfg.SessionManager.IdentityMiddleware())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	quotesController := NewQuotesController(cfg.QuoteStore, cfg.LikeLedger, cfg.Auditor, cfg.DefaultPageSize, cfg.MaxPageSize)
	likesController := NewLikesController(cfg.LikeLedger)
	auditController := NewAuditController(cfg.AuditStore)

	adminOnly := auth.AdminMiddleware(cfg.AdminTokenHash)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/quotes", quotesController.ListQuotes)
		api.GET("/quotes/stats", adminOnly, quotesController.GetStats)
		api.GET("/quotes/:id", quotesController.GetQuote)
		api.POST("/quotes", adminOnly, quotesController.CreateQuote)
		api.PUT("/quotes/:id", adminOnly, quotesController.UpdateQuote)
		api.DELETE("/quotes/:id", adminOnly, quotesController.DeleteQuote)

		api.POST("/quotes/:id/like", likesController.ToggleLike)

		api.GET("/audit", adminOnly, auditController.ListEvents)
	}

	return router
}
