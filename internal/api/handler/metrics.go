package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/service"
)

// MetricsHandler handles the read-only metrics endpoints. A store failure on
// these surfaces degrades to zeroed results with a db_error diagnostic; it
// never takes the service down.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Overview handles GET /api/v1/metrics/overview.
func (h *MetricsHandler) Overview(c *gin.Context) {
	out, err := h.metrics.Overview(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"total_applications": 0,
			"by_status":          gin.H{},
			"offer_rate":         0.0,
			"rejection_rate":     0.0,
			"db_error":           err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Funnel handles GET /api/v1/metrics/funnel.
func (h *MetricsHandler) Funnel(c *gin.Context) {
	out, err := h.metrics.Funnel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"total_applications": 0,
			"by_stage":           gin.H{},
			"db_error":           err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Milestones handles GET /api/v1/metrics/milestones.
func (h *MetricsHandler) Milestones(c *gin.Context) {
	out, err := h.metrics.TimeToMilestones(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"avg_days_to_interview": nil,
			"avg_days_to_offer":     nil,
			"db_error":              err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, out)
}

// Channels handles GET /api/v1/metrics/channels.
func (h *MetricsHandler) Channels(c *gin.Context) {
	out, err := h.metrics.ByChannel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"items":    []service.ChannelConversion{},
			"db_error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
