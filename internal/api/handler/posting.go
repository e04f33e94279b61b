package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/domain"
	"github.com/jshao/jobtrackiq/internal/service"
)

// PostingHandler handles job posting inbox endpoints.
type PostingHandler struct {
	postings *service.PostingService
}

// NewPostingHandler creates a new posting handler.
func NewPostingHandler(postings *service.PostingService) *PostingHandler {
	return &PostingHandler{postings: postings}
}

// Create handles POST /api/v1/jobs. Identical postings collapse onto the
// existing row.
func (h *PostingHandler) Create(c *gin.Context) {
	var input service.PostingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	posting, err := h.postings.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, posting)
}

// List handles GET /api/v1/jobs.
func (h *PostingHandler) List(c *gin.Context) {
	limit, offset := pagination(c, 20, 100)

	total, items, err := h.postings.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"total":    0,
			"items":    []domain.JobPosting{},
			"db_error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"items": items,
	})
}

// Get handles GET /api/v1/jobs/:id.
func (h *PostingHandler) Get(c *gin.Context) {
	posting, err := h.postings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

// Delete handles DELETE /api/v1/jobs/:id.
func (h *PostingHandler) Delete(c *gin.Context) {
	if err := h.postings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type promoteRequest struct {
	Channel *string `json:"channel"`
}

// Promote handles POST /api/v1/jobs/:id/promote: the posting becomes a fresh
// tracked application and leaves the inbox.
func (h *PostingHandler) Promote(c *gin.Context) {
	var req promoteRequest
	// Body is optional; an empty body promotes without a channel.
	_ = c.ShouldBindJSON(&req)

	app, err := h.postings.Promote(c.Request.Context(), c.Param("id"), req.Channel)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}
