package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/repository"
	"github.com/jshao/jobtrackiq/internal/service"
)

// ApplicationHandler handles application endpoints.
type ApplicationHandler struct {
	tracker *service.TrackerService
}

// NewApplicationHandler creates a new application handler.
func NewApplicationHandler(tracker *service.TrackerService) *ApplicationHandler {
	return &ApplicationHandler{tracker: tracker}
}

// Create handles POST /api/v1/applications.
func (h *ApplicationHandler) Create(c *gin.Context) {
	var input service.CreateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	app, err := h.tracker.CreateApplication(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

// List handles GET /api/v1/applications. A store failure degrades to an
// empty listing with a diagnostic instead of an opaque crash.
func (h *ApplicationHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 20, 100)
	params := repository.ApplicationListParams{
		Status:  domain.ApplicationStatus(c.Query("status")),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  offset,
		OrderBy: c.DefaultQuery("order_by", "created_at"),
		Order:   c.DefaultQuery("order", "desc"),
	}

	total, items, err := h.tracker.ListApplications(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"total":    0,
			"items":    []domain.Application{},
			"db_error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"items": items,
	})
}

// Get handles GET /api/v1/applications/:id.
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.tracker.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// Delete handles DELETE /api/v1/applications/:id. Removes the application
// and all its events.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	if err := h.tracker.DeleteApplication(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
