package routes

import (
	"github.com/gin-gonic/gin"

	"tablet-fleet-manager/internal/config"
	"tablet-fleet-manager/internal/delivery/http/handler"
	"tablet-fleet-manager/internal/fleet"
	"tablet-fleet-manager/internal/infrastructure/database/postgres"
	"tablet-fleet-manager/internal/ingestion"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/middleware"
	"tablet-fleet-manager/internal/realtime"
	checkoutUsecase "tablet-fleet-manager/internal/usecase/checkout"
	deviceUsecase "tablet-fleet-manager/internal/usecase/device"
	"tablet-fleet-manager/pkg/mqtt"
)

// Dependencies carries the already-wired core components into the HTTP layer.
type Dependencies struct {
	DB       *postgres.DB
	Broker   *mqtt.Client
	Hub      *realtime.Hub
	Ingest   *ingestion.Router
	Fleet    *fleet.Aggregator
	Devices  *deviceUsecase.Service
	Checkout *checkoutUsecase.Service
}

func SetupRoutes(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(10 << 20))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	deviceHandler := handler.NewDeviceHandler(deps.Devices)
	checkoutHandler := handler.NewCheckoutHandler(deps.Checkout)
	wsHandler := handler.NewWebSocketHandler(deps.Hub)
	systemHandler := handler.NewSystemHandler(deps.DB, deps.Ingest, deps.Broker)

	router.GET("/health", systemHandler.Health)
	router.GET("/ws", wsHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		deviceHandler.RegisterRoutes(v1)
		checkoutHandler.RegisterRoutes(v1)
	}

	debug := router.Group("/debug")
	{
		debug.GET("/ingest", systemHandler.IngestMetrics)
	}

	logger.Info("All routes initialized")
	return router
}
