package enrich

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Enricher *Enricher
}

func NewHandler(e *Enricher) *Handler {
	return &Handler{Enricher: e}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bulk-enrich", h.bulkEnrich)
}

func (h *Handler) bulkEnrich(c *gin.Context) {
	var body struct {
		Limit int `json:"limit"`
	}
	// No body at all is fine; the default limit applies.
	_ = c.ShouldBindJSON(&body)

	summary, err := h.Enricher.Run(c.Request.Context(), body.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bulk enrich failed."})
		return
	}
	c.JSON(http.StatusOK, summary)
}
