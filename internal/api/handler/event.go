package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/service"
)

// EventHandler handles event ingestion and listing endpoints.
type EventHandler struct {
	tracker *service.TrackerService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(tracker *service.TrackerService) *EventHandler {
	return &EventHandler{tracker: tracker}
}

// Create handles POST /api/v1/applications/:id/events. The response is
// either the persisted event or a structured validation failure with the
// reason string.
func (h *EventHandler) Create(c *gin.Context) {
	var input service.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	event, err := h.tracker.AddEvent(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// List handles GET /api/v1/applications/:id/events.
func (h *EventHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 50, 200)

	events, err := h.tracker.ListEvents(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// Delete handles DELETE /api/v1/events/:id.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.tracker.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
