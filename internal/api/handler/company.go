package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jshao/jobtrackiq/internal/service"
)

// CompanyHandler handles company index endpoints.
type CompanyHandler struct {
	companies *service.CompanyService
}

// NewCompanyHandler creates a new company handler.
func NewCompanyHandler(companies *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// Suggest handles GET /api/v1/companies/suggest.
func (h *CompanyHandler) Suggest(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 20 {
		limit = 10
	}

	entries, err := h.companies.Suggest(c.Request.Context(), q, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, gin.H{
			"id":     e.ID,
			"name":   e.Name,
			"source": e.Source,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}
