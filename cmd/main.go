package main

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"org-service/internal/audit"
	"org-service/internal/auth"
	"org-service/internal/handler"
	"org-service/internal/middleware"
	"org-service/internal/service"
	"org-service/internal/store"
	"org-service/pkg/config"
	"org-service/pkg/database"
	"org-service/pkg/logger"
	"org-service/prometheus"
)

func main() {
	startTime := time.Now().UTC()

	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting organization service...", cfg.LogConfig()...)

	// Connect to the master database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Build the explicit handles every component receives; no singletons
	st := store.New(db)
	recorder := audit.NewRecorder(st, log, cfg.Audit.QueueSize)
	defer recorder.Close()

	tokens := auth.NewTokenIssuer(cfg.JWT.SigningKey, time.Duration(cfg.JWT.ExpireMinutes)*time.Minute)
	gate := auth.NewGate(tokens, st)

	orgService := service.NewOrgService(st, recorder, log)
	authService := service.NewAuthService(st, tokens, recorder, log)
	analyticsService := service.NewAnalyticsService(st, startTime, log)

	orgHandler := handler.NewOrgHandler(orgService)
	authHandler := handler.NewAuthHandler(authService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	healthHandler := handler.NewHealthHandler(st)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", handler.Metrics)

	// Authentication routes
	authGroup := e.Group("/auth")
	authGroup.POST("/login", authHandler.Login)

	sessionGroup := e.Group("/auth")
	sessionGroup.Use(middleware.AuthMiddleware(gate))
	sessionGroup.GET("/profile", authHandler.Profile)
	sessionGroup.POST("/logout", authHandler.Logout)

	// Organization lifecycle - create and read are public, mutation requires
	// the organization's own admin
	orgs := e.Group("/organizations")
	orgs.POST("", orgHandler.Create)
	orgs.GET("/stats", orgHandler.Stats)
	orgs.GET("/:name", orgHandler.Get)

	orgsAuth := e.Group("/organizations")
	orgsAuth.Use(middleware.AuthMiddleware(gate))
	orgsAuth.PUT("", orgHandler.Update)
	orgsAuth.DELETE("/:name", orgHandler.Delete)

	// Analytics projections
	analytics := e.Group("/analytics")
	analytics.GET("/system", analyticsHandler.System)

	analyticsAuth := e.Group("/analytics")
	analyticsAuth.Use(middleware.AuthMiddleware(gate))
	analyticsAuth.GET("/dashboard", analyticsHandler.Dashboard)
	analyticsAuth.GET("/audit-logs", analyticsHandler.AuditLogs)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
