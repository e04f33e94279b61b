package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jshao/jobtrackiq/internal/api"
	"github.com/jshao/jobtrackiq/internal/config"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/repository"
	"github.com/jshao/jobtrackiq/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize services
	companyService := service.NewCompanyService(repository.NewCompanyRepository(db))
	trackerService := service.NewTrackerService(db, companyService, appLogger, &service.TrackerConfig{
		DuplicateWindow: cfg.Tracker.DuplicateWindow(),
	})
	metricsService := service.NewMetricsService(repository.NewMetricsRepository(db), cfg.Tracker.ChannelMinSamples)
	postingService := service.NewPostingService(db, companyService, appLogger)
	ingestService := service.NewIngestService(postingService, companyService, appLogger, &service.IngestConfig{
		Workers:   cfg.Ingest.Workers,
		BatchSize: cfg.Ingest.BatchSize,
	})

	// Setup router
	router := api.SetupRouter(&api.Dependencies{
		Tracker:       trackerService,
		Metrics:       metricsService,
		Companies:     companyService,
		Postings:      postingService,
		Ingest:        ingestService,
		IngestTimeout: cfg.Ingest.RequestTimeout,
	}, &cfg.Server)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
