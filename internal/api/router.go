// Package api wires together all HTTP routes for the Vertex backend.
//
// Route grouping philosophy:
//   - /api/v1/auth/login is the only unauthenticated application route. It is
//     rate limited aggressively because it is the credential-guessing surface.
//   - Session routes (/api/v1/me/*, /api/v1/workspaces/*) require a valid JWT
//     but no particular area: they serve both platform admins and trainers.
//   - /api/v1/admin/* requires the admin area (platform_admin or owner_admin
//     of the active workspace). /api/v1/trainer/* requires the trainer area
//     plus a selected, approved workspace for any mutation.
//
// Redis is optional. When enabled it backs the workspace approval cache and
// replica-wide rate limiting; when disabled both degrade to in-process
// equivalents and the route table is unchanged.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/vertex-platform/vertex-backend/internal/api/admin"
	"github.com/vertex-platform/vertex-backend/internal/api/session"
	"github.com/vertex-platform/vertex-backend/internal/api/trainer"
	"github.com/vertex-platform/vertex-backend/internal/auth"
	"github.com/vertex-platform/vertex-backend/internal/cache"
	"github.com/vertex-platform/vertex-backend/internal/config"
	"github.com/vertex-platform/vertex-backend/internal/db/repositories"
	"github.com/vertex-platform/vertex-backend/internal/jobs"
	"github.com/vertex-platform/vertex-backend/internal/middleware"
	"github.com/vertex-platform/vertex-backend/internal/safego"
	"github.com/vertex-platform/vertex-backend/internal/services"
	"github.com/vertex-platform/vertex-backend/internal/storage"

	// Import storage backends to register them
	_ "github.com/vertex-platform/vertex-backend/internal/storage/local"
	_ "github.com/vertex-platform/vertex-backend/internal/storage/s3"
)

// BackgroundServices holds references to background jobs and resources that must
// be stopped during graceful shutdown. The caller (cmd/server) is responsible for
// calling Shutdown() when the process receives a termination signal.
type BackgroundServices struct {
	reminderDispatcher *jobs.ReminderDispatcher
	rateLimiters       []*middleware.RateLimiter
	redisClient        *redis.Client
}

// Shutdown stops all background goroutines. It should be called after the HTTP
// server has been shut down so that in-flight requests are drained first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	if bg.reminderDispatcher != nil {
		bg.reminderDispatcher.Stop()
	}
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	if bg.redisClient != nil {
		if err := bg.redisClient.Close(); err != nil {
			slog.Error("failed to close redis client", "error", err)
		}
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *BackgroundServices) {
	router := gin.New()

	// Initialize storage backend for report exports
	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}
	log.Printf("Initialized storage backend: %s", cfg.Storage.DefaultBackend)

	// Optional Redis client for the workspace cache and shared rate limits
	var redisClient *redis.Client
	var wsCache *cache.WorkspaceCache
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		wsCache = cache.NewWorkspaceCache(redisClient, 0)
		log.Printf("Redis enabled: %s", cfg.Redis.Addr)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	workspaceRepo := repositories.NewWorkspaceRepository(db)
	studentRepo := repositories.NewStudentRepository(db)
	appointmentRepo := repositories.NewAppointmentRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Wrap *sql.DB with sqlx for the reminder and report repositories
	sqlxDB := sqlx.NewDb(db, "postgres")
	reminderRepo := repositories.NewReminderRepository(sqlxDB)
	reportRepo := repositories.NewReportRepository(sqlxDB)

	// Report exporter is shared by the admin and trainer report handlers so
	// both areas produce identical CSV artifacts.
	reportExporter := services.NewReportExporter(studentRepo, appointmentRepo, reportRepo, storageBackend)

	// Initialize and start the reminder dispatcher
	reminderDispatcher := jobs.NewReminderDispatcher(reminderRepo, &cfg.Reminders, &cfg.Notifications)
	safego.Go(func() {
		reminderDispatcher.Start(context.Background())
	})

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(LoggerMiddleware(cfg))
	router.Use(CORSMiddleware(cfg))
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db))

	// Readiness check endpoint (includes storage backend probe)
	router.GET("/ready", readinessHandler(db, storageBackend))

	// API version
	router.GET("/version", versionHandler())

	// Initialize handlers
	sessionHandlers := session.NewHandlers(cfg, db, wsCache)
	workspaceHandlers := admin.NewWorkspaceHandlers(cfg, db, wsCache)
	userHandlers := admin.NewUserHandlers(cfg, db)
	adminReportHandlers := admin.NewReportHandlers(reportExporter)
	studentHandlers := trainer.NewStudentHandlers(cfg, db)
	programHandlers := trainer.NewProgramHandlers(cfg, db)
	appointmentHandlers := trainer.NewAppointmentHandlers(cfg, db)
	reminderHandlers := trainer.NewReminderHandlers(cfg, db, sqlxDB)
	whatsappHandlers := trainer.NewWhatsAppHandlers(cfg, db)
	trainerReportHandlers := trainer.NewReportHandlers(reportExporter)

	// Initialize rate limiters. When Redis is enabled the middleware uses a
	// Redis sliding window with these limiters as the local fallback.
	authRateLimiter := middleware.NewRateLimiter(middleware.AuthRateLimitConfig())
	generalRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	reportRateLimiter := middleware.NewRateLimiter(middleware.ReportRateLimitConfig())

	rateLimit := func(limiter *middleware.RateLimiter, limiterCfg middleware.RateLimitConfig) gin.HandlerFunc {
		if redisClient != nil {
			return middleware.RedisRateLimitMiddleware(redisClient, limiterCfg, limiter)
		}
		return middleware.RateLimitMiddleware(limiter)
	}

	apiV1 := router.Group("/api/v1")
	{
		// Public authentication endpoints (no auth required, but rate limited)
		authGroup := apiV1.Group("/auth")
		authGroup.Use(rateLimit(authRateLimiter, middleware.AuthRateLimitConfig()))
		{
			authGroup.POST("/login", sessionHandlers.LoginHandler())
		}

		// Authenticated session endpoints, shared by both areas
		authenticatedGroup := apiV1.Group("")
		authenticatedGroup.Use(middleware.AuthMiddleware(userRepo))
		authenticatedGroup.Use(rateLimit(generalRateLimiter, middleware.DefaultRateLimitConfig()))
		authenticatedGroup.Use(middleware.AuditMiddleware(auditRepo))
		{
			authenticatedGroup.POST("/auth/refresh", sessionHandlers.RefreshHandler())
			authenticatedGroup.POST("/auth/logout", sessionHandlers.LogoutHandler())

			authenticatedGroup.GET("/me", sessionHandlers.MeHandler())
			authenticatedGroup.GET("/me/workspaces", sessionHandlers.MyWorkspacesHandler())
			authenticatedGroup.GET("/me/route", sessionHandlers.RouteHandler())

			authenticatedGroup.POST("/workspaces", sessionHandlers.CreateWorkspaceHandler())
			authenticatedGroup.POST("/workspaces/:id/switch", sessionHandlers.SwitchWorkspaceHandler())

			// Platform admin area
			adminGroup := authenticatedGroup.Group("/admin")
			adminGroup.Use(middleware.RequireArea(auth.AreaAdmin))
			{
				adminGroup.GET("/workspaces", workspaceHandlers.ListWorkspacesHandler())
				adminGroup.GET("/workspaces/:id", workspaceHandlers.GetWorkspaceHandler())
				adminGroup.POST("/workspaces/:id/approve", workspaceHandlers.ApproveWorkspaceHandler())
				adminGroup.POST("/workspaces/:id/reject", workspaceHandlers.RejectWorkspaceHandler())
				adminGroup.DELETE("/workspaces/:id", workspaceHandlers.DeleteWorkspaceHandler())

				adminGroup.GET("/users", userHandlers.ListUsersHandler())
				adminGroup.GET("/users/search", userHandlers.SearchUsersHandler())
				adminGroup.GET("/users/:id", userHandlers.GetUserHandler())
				adminGroup.POST("/users", userHandlers.CreateUserHandler())
				adminGroup.PUT("/users/:id", userHandlers.UpdateUserHandler())
				adminGroup.DELETE("/users/:id", userHandlers.DeleteUserHandler())

				// Report generation is expensive; it gets its own limiter
				adminGroup.POST("/workspaces/:id/reports",
					rateLimit(reportRateLimiter, middleware.ReportRateLimitConfig()),
					adminReportHandlers.GenerateReportHandler())
				adminGroup.GET("/workspaces/:id/reports", adminReportHandlers.ListReportsHandler())
				adminGroup.GET("/workspaces/:id/reports/:reportId/download", adminReportHandlers.DownloadReportHandler())
			}

			// Trainer area. Every route resolves data through the user's active
			// workspace; mutations additionally require that workspace to be
			// approved (the mutable-workspace gate consults the cache first).
			trainerGroup := authenticatedGroup.Group("/trainer")
			trainerGroup.Use(middleware.RequireArea(auth.AreaTrainer))
			trainerGroup.Use(middleware.RequireWorkspaceSelected())
			trainerGroup.Use(middleware.RequireMutableWorkspace(workspaceRepo, wsCache))
			{
				trainerGroup.GET("/students", studentHandlers.ListStudentsHandler())
				trainerGroup.GET("/students/:id", studentHandlers.GetStudentHandler())
				trainerGroup.POST("/students", studentHandlers.CreateStudentHandler())
				trainerGroup.PUT("/students/:id", studentHandlers.UpdateStudentHandler())
				trainerGroup.DELETE("/students/:id", studentHandlers.DeleteStudentHandler())

				trainerGroup.GET("/students/:id/whatsapp-links", whatsappHandlers.ListWhatsAppLinksHandler())
				trainerGroup.POST("/students/:id/whatsapp-links", whatsappHandlers.CreateWhatsAppLinkHandler())
				trainerGroup.PUT("/students/:id/whatsapp-links/:linkId", whatsappHandlers.UpdateWhatsAppLinkHandler())
				trainerGroup.DELETE("/students/:id/whatsapp-links/:linkId", whatsappHandlers.DeleteWhatsAppLinkHandler())

				trainerGroup.GET("/programs", programHandlers.ListProgramsHandler())
				trainerGroup.GET("/programs/:id", programHandlers.GetProgramHandler())
				trainerGroup.POST("/programs", programHandlers.CreateProgramHandler())
				trainerGroup.PUT("/programs/:id", programHandlers.UpdateProgramHandler())
				trainerGroup.DELETE("/programs/:id", programHandlers.DeleteProgramHandler())
				trainerGroup.GET("/programs/:id/assignments", programHandlers.ListAssignmentsHandler())
				trainerGroup.POST("/programs/:id/assignments", programHandlers.AssignProgramHandler())
				trainerGroup.DELETE("/programs/:id/assignments/:studentId", programHandlers.UnassignProgramHandler())

				trainerGroup.GET("/appointments", appointmentHandlers.ListAppointmentsHandler())
				trainerGroup.GET("/appointments/upcoming", appointmentHandlers.ListUpcomingHandler())
				trainerGroup.GET("/appointments/:id", appointmentHandlers.GetAppointmentHandler())
				trainerGroup.POST("/appointments", appointmentHandlers.CreateAppointmentHandler())
				trainerGroup.PUT("/appointments/:id", appointmentHandlers.UpdateAppointmentHandler())
				trainerGroup.DELETE("/appointments/:id", appointmentHandlers.DeleteAppointmentHandler())

				trainerGroup.GET("/reminders", reminderHandlers.ListRemindersHandler())
				trainerGroup.POST("/reminders", reminderHandlers.CreateReminderHandler())
				trainerGroup.PUT("/reminders/:id", reminderHandlers.UpdateReminderHandler())
				trainerGroup.DELETE("/reminders/:id", reminderHandlers.DeleteReminderHandler())

				trainerGroup.POST("/reports",
					rateLimit(reportRateLimiter, middleware.ReportRateLimitConfig()),
					trainerReportHandlers.GenerateReportHandler())
				trainerGroup.GET("/reports", trainerReportHandlers.ListReportsHandler())
				trainerGroup.GET("/reports/:id/download", trainerReportHandlers.DownloadReportHandler())
			}
		}
	}

	bg := &BackgroundServices{
		reminderDispatcher: reminderDispatcher,
		rateLimiters:       []*middleware.RateLimiter{authRateLimiter, generalRateLimiter, reportRateLimiter},
		redisClient:        redisClient,
	}

	return router, bg
}

// @Summary      Health check
// @Description  Returns the health status of the service, including database connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status: healthy, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "status: unhealthy, error: database connection failed"
// @Router       /health [get]
// healthCheckHandler returns the health status of the service
func healthCheckHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check database connection
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      Readiness check
// @Description  Returns whether the service is ready to accept traffic. Checks database and storage connectivity.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "ready: true, time: RFC3339 timestamp"
// @Failure      503  {object}  map[string]interface{}  "ready: false, error: database not ready"
// @Router       /ready [get]
// readinessHandler returns the readiness status of the service.
// Unlike the liveness probe (/health), this also checks the storage backend so
// that a Kubernetes readiness gate fails when report exports would error.
func readinessHandler(db *sql.DB, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		// Check database connection
		if err := db.Ping(); err != nil {
			checks["database"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "database not ready",
			})
			return
		}
		checks["database"] = "healthy"

		// Probe the storage backend with a known-absent sentinel path.
		// Exists() exercises authentication and network connectivity without
		// creating any state.
		if _, err := storageBackend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// @Summary      API version
// @Description  Returns the current API version.
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "version, api_version"
// @Router       /version [get]
// versionHandler returns the API version
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// LoggerMiddleware provides structured logging
func LoggerMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		// Log the request
		if cfg.Logging.Format == "json" {
			logJSON(c, latency, path, query)
		} else {
			logText(c, latency, path, query)
		}
	}
}

// logJSON logs a request as a JSON-structured slog record.
func logJSON(c *gin.Context, latency time.Duration, path, query string) {
	requestID, _ := c.Get(middleware.RequestIDKey)
	slog.LogAttrs(
		c.Request.Context(),
		slog.LevelInfo,
		"http request",
		slog.String("method", c.Request.Method),
		slog.String("path", path),
		slog.String("query", query),
		slog.Int("status", c.Writer.Status()),
		slog.Int("size", c.Writer.Size()),
		slog.Duration("latency", latency),
		slog.String("ip", c.ClientIP()),
		slog.String("request_id", fmt.Sprintf("%v", requestID)),
		slog.String("user_agent", c.Request.UserAgent()),
	)
}

// logText logs a request as a human-readable slog text record.
func logText(c *gin.Context, latency time.Duration, path, query string) {
	// reuse the same structured output; slog will emit text format when the global
	// handler is a TextHandler (configured in telemetry.SetupLogger).
	logJSON(c, latency, path, query)
}

// CORSMiddleware handles CORS
func CORSMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// Check if origin is allowed
		allowed := false
		for _, allowedOrigin := range cfg.Security.CORS.AllowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			if origin == "" {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
			}
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")
			c.Header("Access-Control-Max-Age", "3600")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
