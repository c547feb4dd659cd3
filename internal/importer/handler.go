package importer

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"noircollect/internal/clz"
	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

type Handler struct {
	Pipeline *Pipeline
}

func NewHandler(p *Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.importJSON)
	rg.POST("/import-xml", h.importXML)
	rg.POST("/update", h.update)
}

// importBody accepts either {"entries": [...], "replace": bool} or a bare
// entry array.
func importBody(c *gin.Context) ([]comics.Entry, bool, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, false, false
	}

	var entries []comics.Entry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, false, true
	}

	var wrapped struct {
		Entries []comics.Entry `json:"entries"`
		Replace bool    `json:"replace"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, false, false
	}
	return wrapped.Entries, wrapped.Replace, true
}

func (h *Handler) importJSON(c *gin.Context) {
	entries, replace, ok := importBody(c)
	if !ok || len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entries array is required"})
		return
	}

	records := make([]models.ComicRecord, 0, len(entries))
	for i := range entries {
		records = append(records, entries[i].Record())
	}

	res, err := h.Pipeline.Run(c.Request.Context(), records, replace)
	if err != nil {
		h.Pipeline.Log.Error("import failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Import failed."})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) importXML(c *gin.Context) {
	var req struct {
		XML     string `json:"xml"`
		Replace bool   `json:"replace"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.XML == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "xml is required"})
		return
	}

	records, err := clz.Parse(req.XML)
	if err != nil {
		h.Pipeline.Log.Error("clz parse failed", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid CLZ XML"})
		return
	}

	res, err := h.Pipeline.Run(c.Request.Context(), records, req.Replace)
	if err != nil {
		h.Pipeline.Log.Error("xml import failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "XML import failed."})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) update(c *gin.Context) {
	entries, _, ok := importBody(c)
	if !ok || len(entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entries array is required"})
		return
	}

	res, err := h.Pipeline.CoalesceUpdate(c.Request.Context(), entries)
	if err != nil {
		h.Pipeline.Log.Error("update failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed."})
		return
	}
	c.JSON(http.StatusOK, res)
}
