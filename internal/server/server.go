package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lendborrow/lendborrow-api/internal/config"
	"github.com/lendborrow/lendborrow-api/internal/handlers"
	"github.com/lendborrow/lendborrow-api/internal/middleware"
	"github.com/lendborrow/lendborrow-api/internal/services"
)

// NewRouter builds the gin engine serving the wallet gate API
func NewRouter(cfg *config.Config, sessions *services.SessionService, limiter *middleware.RateLimiter) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	InitializeRoutes(router, cfg, sessions, limiter)
	return router
}

func InitializeRoutes(router *gin.Engine, cfg *config.Config, sessions *services.SessionService, limiter *middleware.RateLimiter) {
	healthHandler := handlers.NewHealthHandler(sessions)
	sessionHandler := handlers.NewSessionHandler(sessions, cfg.CORSAllowedOrigins)

	router.Use(configureCORS(cfg))
	router.Use(middleware.CorrelationIDMiddleware())

	// if we are not in production, log the request body
	if cfg.IsDevelopment() {
		router.Use(middleware.LogRequest())
	}

	router.GET("/health", healthHandler.Health)

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter.Middleware())
	}
	{
		sessionsGroup := v1.Group("/sessions")
		{
			sessionsGroup.POST("", sessionHandler.CreateSession)
			sessionsGroup.GET("/:session_id", sessionHandler.GetSession)
			sessionsGroup.DELETE("/:session_id", sessionHandler.CloseSession)
			sessionsGroup.PUT("/:session_id/connection", sessionHandler.ConnectWallet)
			sessionsGroup.DELETE("/:session_id/connection", sessionHandler.DisconnectWallet)
			sessionsGroup.GET("/:session_id/navigation", sessionHandler.StreamNavigation)
		}
	}
}

// configureCORS returns a configured CORS middleware
func configureCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AllowMethods = cfg.CORSAllowedMethods
	corsConfig.AllowHeaders = cfg.CORSAllowedHeaders
	corsConfig.ExposeHeaders = []string{middleware.CorrelationIDHeader}
	corsConfig.AllowCredentials = cfg.CORSAllowCredentials
	return cors.New(corsConfig)
}
