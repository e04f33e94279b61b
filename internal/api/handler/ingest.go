package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/logger"
	"github.com/jshao/jobtrackiq/internal/service"
	"github.com/jshao/jobtrackiq/internal/source/greenhouse"
)

// IngestHandler triggers board ingestion runs.
type IngestHandler struct {
	ingest         *service.IngestService
	requestTimeout time.Duration
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingest *service.IngestService, requestTimeout time.Duration) *IngestHandler {
	return &IngestHandler{ingest: ingest, requestTimeout: requestTimeout}
}

// Greenhouse handles POST /api/v1/ingest/greenhouse/:board. The optional
// company query overrides the company name recorded for fetched postings
// (the board API does not return one); limit caps the number of jobs pulled.
func (h *IngestHandler) Greenhouse(c *gin.Context) {
	board := c.Param("board")
	if board == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "board token is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	src := greenhouse.NewAdapter(&greenhouse.Config{
		BoardToken:  board,
		CompanyName: c.Query("company"),
		Timeout:     h.requestTimeout,
	})

	ctx := logger.WithField(c.Request.Context(), logger.FieldBoard, board)
	stats, err := h.ingest.IngestFromSource(ctx, src, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "greenhouse ingestion failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"board":    board,
		"fetched":  stats.Fetched,
		"upserted": stats.Upserted,
		"failed":   stats.Failed,
	})
}
