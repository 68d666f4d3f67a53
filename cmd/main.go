package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tablet-fleet-manager/internal/config"
	"tablet-fleet-manager/internal/fleet"
	"tablet-fleet-manager/internal/infrastructure/database/postgres"
	"tablet-fleet-manager/internal/ingestion"
	"tablet-fleet-manager/internal/logger"
	"tablet-fleet-manager/internal/realtime"
	"tablet-fleet-manager/internal/routes"
	checkoutUsecase "tablet-fleet-manager/internal/usecase/checkout"
	deviceUsecase "tablet-fleet-manager/internal/usecase/device"
	"tablet-fleet-manager/pkg/mqtt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
	)

	if cfg.Database.Host == "" || cfg.Database.DBName == "" {
		logger.Fatal("Database configuration is missing. Please set DB_HOST and DB_NAME environment variables.")
	}
	if cfg.MQTT.Broker == "" {
		logger.Fatal("MQTT broker is missing. Please set MQTT_BROKER environment variable.")
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	deviceRepo := postgres.NewDeviceRepository(db)
	checkoutRepo := postgres.NewCheckoutRepository(db)
	actionLogRepo := postgres.NewActionLogRepository(db)
	telemetryRepo := postgres.NewTelemetryRepository(db)

	hub := realtime.NewHub()
	aggregator := fleet.NewAggregator(deviceRepo, checkoutRepo, hub)

	classifier := ingestion.NewClassifier(actionLogRepo)
	ingestRouter := ingestion.NewRouter(
		deviceRepo,
		telemetryRepo,
		actionLogRepo,
		classifier,
		hub,
		cfg.Telemetry.MinSampleDistanceM,
	)

	broker := mqtt.NewClient(&mqtt.Config{
		Broker:         cfg.MQTT.Broker,
		ClientID:       cfg.MQTT.ClientID,
		Username:       cfg.MQTT.Username,
		Password:       cfg.MQTT.Password,
		KeepAlive:      cfg.MQTT.KeepAlive,
		ConnectTimeout: cfg.MQTT.ConnectTimeout,
		ReconnectDelay: cfg.MQTT.ReconnectDelay,
	}, cfg.MQTT.QoS)

	// Subscriptions are registered before the connect so the on-connect
	// replay installs them on the first session too.
	ingestRouter.Start(broker)
	if err := broker.Connect(); err != nil {
		logger.Fatal("Failed to connect to MQTT broker", zap.Error(err))
	}
	defer broker.Disconnect()

	deviceService := deviceUsecase.NewService(
		deviceRepo,
		telemetryRepo,
		aggregator,
		broker,
		cfg.Telemetry.SimplifyMinDistanceM,
		cfg.Telemetry.SimplifyMaxPoints,
	)
	checkoutService := checkoutUsecase.NewService(checkoutRepo, deviceRepo, aggregator)

	router := routes.SetupRoutes(cfg, &routes.Dependencies{
		DB:       db,
		Broker:   broker,
		Hub:      hub,
		Ingest:   ingestRouter,
		Fleet:    aggregator,
		Devices:  deviceService,
		Checkout: checkoutService,
	})

	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	addr := net.JoinHostPort(host, port)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Failed to shutdown server", zap.Error(err))
	}

	log.Println("Server exited properly")
}
