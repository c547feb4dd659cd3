package comics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/comics", h.list)
	rg.POST("/comics", h.create)
	rg.PUT("/comics/:id", h.update)
	rg.DELETE("/comics/:id", h.remove)
}

// list returns one ownership shelf at a time: owned=true selects the
// collection, anything else the wishlist.
func (h *Handler) list(c *gin.Context) {
	owned := c.Query("owned") == "true"

	rows, err := h.Repo.ListByOwned(c.Request.Context(), owned)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comics."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": rows})
}

func (h *Handler) create(c *gin.Context) {
	var entry Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and issueNumber are required"})
		return
	}
	rec := entry.Record()
	if rec.Title == "" || rec.IssueNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and issueNumber are required"})
		return
	}

	saved, err := h.Repo.UpsertOne(c.Request.Context(), &rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save comic."})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"result": saved})
}

func (h *Handler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var entry Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	rec := entry.Record()

	saved, err := h.Repo.UpdateByID(c.Request.Context(), id, &rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comic."})
		return
	}
	if saved == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": saved})
}

func (h *Handler) remove(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	deleted, err := h.Repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comic."})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "comic not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
