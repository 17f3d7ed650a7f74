package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/archivus/masterdocs/internal/app/config"
	"github.com/archivus/masterdocs/internal/app/handlers"
	"github.com/archivus/masterdocs/internal/app/middleware"
	appservices "github.com/archivus/masterdocs/internal/app/services"
	"github.com/archivus/masterdocs/pkg/logger"
)

// Version reported by the status endpoint
const Version = "1.0.0"

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	services *appservices.ServiceManager
}

// New creates a new server instance on top of wired services
func New(cfg *config.Config, log *logger.Logger, sm *appservices.ServiceManager) *Server {
	// Configure Gin mode based on environment
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case cfg.IsTest():
		gin.SetMode(gin.TestMode)
	}

	// Create router
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogging(log))

	server := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		services: sm,
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              ":" + s.config.Server.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads of up to MaxFileSize need longer than a plain JSON call
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server, then the services behind it
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	if closeErr := s.services.Close(); closeErr != nil {
		s.logger.Error("Error closing services", "error", closeErr)
	}

	return err
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	handlerConfig := s.handlerConfig()
	sm := s.services

	authHandler := handlers.NewAuthHandler(sm.UserService, sm.SummaryService, handlerConfig, s.logger)
	userHandler := handlers.NewUserHandler(sm.UserService, sm.SummaryService, handlerConfig, s.logger)
	documentHandler := handlers.NewDocumentHandler(sm.DocumentService, sm.DeletionService, sm.SummaryService, handlerConfig, s.logger)
	activityHandler := handlers.NewActivityHandler(sm.ActivityService, handlerConfig, s.logger)

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API v1 group
	v1 := s.router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.GET("/status", s.systemStatus)
			authHandler.RegisterPublicRoutes(public, middleware.LoginRateLimit(
				sm.CacheService,
				s.config.Limits.LoginRateLimit,
				s.config.Limits.LoginRateWindow,
				s.logger,
			))
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(sm.UserService), middleware.NoStoreForNonAdmins())
		{
			authHandler.RegisterRoutes(protected)
			userHandler.RegisterRoutes(protected)
			documentHandler.RegisterRoutes(protected)
			activityHandler.RegisterRoutes(protected)
		}
	}
}

func (s *Server) handlerConfig() *handlers.HandlerConfig {
	handlerConfig := handlers.NewHandlerConfig()
	handlerConfig.Environment = s.config.Environment
	handlerConfig.MaxFileSize = s.config.Limits.MaxFileSize
	handlerConfig.DefaultPageSize = s.config.Limits.DefaultPageSize
	handlerConfig.MaxPageSize = s.config.Limits.MaxPageSize
	handlerConfig.EnableDebugErrors = s.config.Server.EnableDebugErrors || !s.config.IsProduction()
	return handlerConfig
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Environment,
	})
}

// System status handler
func (s *Server) systemStatus(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"

	dbStatus := "healthy"
	if err := s.services.Repositories.HealthCheck(c.Request.Context()); err != nil {
		dbStatus = "unhealthy"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	cacheStatus := "healthy"
	if err := s.services.CacheService.Ping(c.Request.Context()); err != nil {
		cacheStatus = "unhealthy"
		overall = "degraded"
	}

	searchStatus := "not_configured"
	if s.services.Search != nil {
		searchStatus = "unhealthy"
		if s.services.Search.Healthy() {
			searchStatus = "healthy"
		}
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"database":  dbStatus,
		"cache":     cacheStatus,
		"search":    searchStatus,
		"storage":   s.config.Storage.Type,
		"timestamp": time.Now().UTC(),
		"version":   Version,
	})
}

// corsMiddleware configures CORS
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(corsConfig)
}
