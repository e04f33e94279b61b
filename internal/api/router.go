package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/api/handler"
	"github.com/jshao/jobtrackiq/internal/api/middleware"
	"github.com/jshao/jobtrackiq/internal/config"
	"github.com/jshao/jobtrackiq/internal/service"
)

// Dependencies carries the services the router exposes.
type Dependencies struct {
	Tracker       *service.TrackerService
	Metrics       *service.MetricsService
	Companies     *service.CompanyService
	Postings      *service.PostingService
	Ingest        *service.IngestService
	IngestTimeout time.Duration
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps *Dependencies, cfg *config.ServerConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	applicationHandler := handler.NewApplicationHandler(deps.Tracker)
	eventHandler := handler.NewEventHandler(deps.Tracker)
	companyHandler := handler.NewCompanyHandler(deps.Companies)
	postingHandler := handler.NewPostingHandler(deps.Postings)
	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	ingestHandler := handler.NewIngestHandler(deps.Ingest, deps.IngestTimeout)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Applications and their event log
		v1.POST("/applications", applicationHandler.Create)
		v1.GET("/applications", applicationHandler.List)
		v1.GET("/applications/:id", applicationHandler.Get)
		v1.DELETE("/applications/:id", applicationHandler.Delete)
		v1.POST("/applications/:id/events", eventHandler.Create)
		v1.GET("/applications/:id/events", eventHandler.List)
		v1.DELETE("/events/:id", eventHandler.Delete)

		// Company index
		v1.GET("/companies/suggest", companyHandler.Suggest)

		// Job posting inbox
		v1.POST("/jobs", postingHandler.Create)
		v1.GET("/jobs", postingHandler.List)
		v1.GET("/jobs/:id", postingHandler.Get)
		v1.DELETE("/jobs/:id", postingHandler.Delete)
		v1.POST("/jobs/:id/promote", postingHandler.Promote)

		// Metrics
		v1.GET("/metrics/overview", metricsHandler.Overview)
		v1.GET("/metrics/funnel", metricsHandler.Funnel)
		v1.GET("/metrics/milestones", metricsHandler.Milestones)
		v1.GET("/metrics/channels", metricsHandler.Channels)

		// Board ingestion
		v1.POST("/ingest/greenhouse/:board", ingestHandler.Greenhouse)
	}

	return r
}
