package clz

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

// Handler serves the full-collection export in its four shapes.
type Handler struct {
	Repo *comics.Repo
}

func NewHandler(repo *comics.Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/export", h.export)
}

// comicsXML is the plain (non-CLZ) XML export envelope.
type comicsXML struct {
	XMLName xml.Name             `xml:"comics"`
	Comics  []models.ComicRecord `xml:"comic"`
}

func (h *Handler) export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))

	rows, err := h.Repo.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export."})
		return
	}

	switch format {
	case "clz-xml":
		out, err := Build(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export."})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="noir-clz-export.xml"`)
		c.Data(http.StatusOK, "application/xml", out)
	case "clz-csv":
		out, err := BuildCSV(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export."})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="noir-clz-export.csv"`)
		c.Data(http.StatusOK, "text/csv", out)
	case "xml":
		out, err := xml.MarshalIndent(comicsXML{Comics: rows}, "", "  ")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export."})
			return
		}
		c.Data(http.StatusOK, "application/xml", append([]byte(xml.Header), out...))
	default:
		c.JSON(http.StatusOK, gin.H{"results": rows})
	}
}
