package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quoteshelf/quoteshelf/internal/audit"
	"github.com/quoteshelf/quoteshelf/internal/auth"
	"github.com/quoteshelf/quoteshelf/internal/config"
	"github.com/quoteshelf/quoteshelf/internal/database"
	auditdb "github.com/quoteshelf/quoteshelf/internal/database/audit"
	"github.com/quoteshelf/quoteshelf/internal/database/likes"
	"github.com/quoteshelf/quoteshelf/internal/database/quotes"
	http_controllers "github.com/quoteshelf/quoteshelf/internal/http"
	"github.com/quoteshelf/quoteshelf/internal/scheduler"
	"github.com/quoteshelf/quoteshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for SIGINT/SIGTERM, then drain with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop the task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting QuoteShelf v%s", version)

	if cfg.Auth.AdminTokenHash == "" {
		log.Printf("WARNING: ADMIN_TOKEN_HASH is not set. Curation endpoints will be disabled. Generate a hash with the 'hash-token' command.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	quotesRepo := quotes.NewRepository(db.DB)
	likesRepo := likes.NewRepository(db.DB)
	auditRepo := auditdb.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewReconcileLikesQueue(likesRepo, auditService),
			tasks.NewCleanupAuditEventsQueue(auditRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Session manager gives every caller a stable anonymous identity
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	// Use the configured CSRF secret, or generate one per process
	var csrfSecret []byte
	if cfg.Auth.CSRFSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.CSRFSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.CSRFSecret)
		}
	} else {
		secret, err := auth.GenerateCSRFSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated CSRF secret (set AUTH_CSRF_SECRET to persist)")
	}

	// Periodic like counter reconciliation and audit cleanup
	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Reconcile.Enabled && taskClient != nil {
		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Reconcile.Schedule, cfg.Audit.RetentionDays)
		if err := maintenance.Start(); err != nil {
			log.Printf("WARNING: Failed to start maintenance scheduler: %v", err)
			maintenance = nil
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		QuoteStore:      quotesRepo,
		LikeLedger:      likesRepo,
		AuditStore:      auditRepo,
		Auditor:         auditService,
		SessionManager:  sessionManager,
		AdminTokenHash:  cfg.Auth.AdminTokenHash,
		CSRFSecret:      csrfSecret,
		SecureCookies:   cfg.Auth.SecureCookies,
		DefaultPageSize: cfg.Feed.DefaultPageSize,
		MaxPageSize:     cfg.Feed.MaxPageSize,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
