package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Feed
		Auth
		Audit
		Tasks
		Reconcile
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Feed struct {
		DefaultPageSize int
		MaxPageSize     int
	}

	Auth struct {
		// AdminTokenHash is a bcrypt hash of the admin bearer token.
		// Admin endpoints are disabled when empty.
		AdminTokenHash string

		SessionLifetime time.Duration
		SecureCookies   bool // Set to false for local dev without HTTPS
		CSRFSecret      string
	}

	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Reconcile struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Feed defaults
	v.SetDefault("feed_default_page_size", DefaultPageSize)
	v.SetDefault("feed_max_page_size", MaxPageSize)

	// Auth defaults
	v.SetDefault("admin_token_hash", "")
	v.SetDefault("auth_session_lifetime", "720h") // Visitor identity survives 30 days
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_csrf_secret", "") // Auto-generated if empty

	// Audit defaults
	v.SetDefault("audit_retention_days", 30)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Like counter reconciliation defaults
	v.SetDefault("reconcile_enabled", true)
	v.SetDefault("reconcile_schedule", "*/30 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Feed: Feed{
			DefaultPageSize: v.GetInt("FEED_DEFAULT_PAGE_SIZE"),
			MaxPageSize:     v.GetInt("FEED_MAX_PAGE_SIZE"),
		},
		Auth: Auth{
			AdminTokenHash:  v.GetString("ADMIN_TOKEN_HASH"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFSecret:      v.GetString("AUTH_CSRF_SECRET"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Reconcile: Reconcile{
			Enabled:  v.GetBool("RECONCILE_ENABLED"),
			Schedule: v.GetString("RECONCILE_SCHEDULE"),
		},
	}
}
