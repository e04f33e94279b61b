package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jshao/jobtrackiq/internal/config"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/repository"
	"github.com/jshao/jobtrackiq/internal/service"
	"github.com/jshao/jobtrackiq/internal/source/greenhouse"
)

func main() {
	// Initialize logger first (with defaults)
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "jobtrackiq-ingest",
	})
	logger.SetDefaultLogger(appLogger)

	// Parse command line flags
	board := flag.String("board", "", "Greenhouse board token to ingest from")
	company := flag.String("company", "", "Company name to record for fetched postings (defaults to the board token)")
	limit := flag.Int("limit", 0, "Maximum number of postings to ingest (0 = no cap)")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *board == "" {
		appLogger.Fatal("-board is required")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize services
	companyService := service.NewCompanyService(repository.NewCompanyRepository(db))
	postingService := service.NewPostingService(db, companyService, appLogger)
	ingestService := service.NewIngestService(postingService, companyService, appLogger, &service.IngestConfig{
		Workers:   cfg.Ingest.Workers,
		BatchSize: cfg.Ingest.BatchSize,
	})

	src := greenhouse.NewAdapter(&greenhouse.Config{
		BoardToken:  *board,
		CompanyName: *company,
		Timeout:     cfg.Ingest.RequestTimeout,
	})

	// Cancel the run on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		appLogger.Info("Interrupted, stopping ingestion...")
		cancel()
	}()

	ctx = logger.WithField(ctx, logger.FieldBoard, *board)
	stats, err := ingestService.IngestFromSource(ctx, src, *limit)
	if err != nil {
		appLogger.WithError(err).Fatal("Ingestion failed")
	}

	appLogger.WithFields(logger.Fields{
		"board":    *board,
		"fetched":  stats.Fetched,
		"upserted": stats.Upserted,
		"failed":   stats.Failed,
	}).Info("Ingestion finished")
}
