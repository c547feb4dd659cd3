package providers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

type Handler struct {
	DB     *sql.DB
	Client *Client
}

func NewHandler(db *sql.DB, client *Client) *Handler {
	return &Handler{DB: db, Client: client}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
	rg.GET("/barcode", h.barcode)
	rg.GET("/self-test", h.selfTest)
}

func (h *Handler) search(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	issue := comics.NormalizeIssueNumber(c.Query("issue"))

	results := h.Client.SearchAll(c.Request.Context(), title, issue)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// barcode runs the ISBN/UPC fallback chain: Open Library for ISBN-shaped
// barcodes, then Google Books, then Metron UPC, and finally a ComicVine
// title search with the raw barcode as a last resort.
func (h *Handler) barcode(c *gin.Context) {
	barcode := c.Query("barcode")
	if barcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "barcode is required"})
		return
	}

	ctx := c.Request.Context()
	cleaned := comics.CleanBarcode(barcode)

	var results []models.Candidate
	if len(cleaned) == 10 || len(cleaned) == 13 {
		results = h.Client.safe("openlibrary", func() ([]models.Candidate, error) {
			return h.Client.SearchOpenLibraryByISBN(ctx, cleaned)
		})
	}
	if len(results) == 0 {
		results = h.Client.safe("googlebooks", func() ([]models.Candidate, error) {
			return h.Client.SearchGoogleBooksByISBN(ctx, cleaned)
		})
	}
	if len(results) == 0 {
		results = h.Client.safe("metron", func() ([]models.Candidate, error) {
			return h.Client.SearchMetronByUPC(ctx, cleaned)
		})
	}
	if len(results) == 0 && h.Client.Cfg.HasComicVine() {
		results = h.Client.safe("comicvine", func() ([]models.Candidate, error) {
			return h.Client.SearchComicVineByTitle(ctx, barcode, "")
		})
	}
	if results == nil {
		results = []models.Candidate{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// selfTest probes the database and actually queries every configured
// provider. Providers without credentials report null rather than false.
func (h *Handler) selfTest(c *gin.Context) {
	ctx := c.Request.Context()

	dbOK := h.DB.PingContext(ctx) == nil

	probe := func(name string, fn func() ([]models.Candidate, error)) bool {
		return len(h.Client.safe(name, fn)) > 0
	}

	results := gin.H{
		"db": dbOK,
		"openlibrary": probe("openlibrary", func() ([]models.Candidate, error) {
			return h.Client.SearchOpenLibraryByTitle(ctx, "Batman")
		}),
		"googlebooks": probe("googlebooks", func() ([]models.Candidate, error) {
			return h.Client.SearchGoogleBooksByTitle(ctx, "Batman")
		}),
		"comicvine": nil,
		"metron":    nil,
	}

	if h.Client.Cfg.HasComicVine() {
		results["comicvine"] = probe("comicvine", func() ([]models.Candidate, error) {
			return h.Client.SearchComicVineByTitle(ctx, "Batman", "1")
		})
	}
	if h.Client.Cfg.HasMetron() {
		results["metron"] = probe("metron", func() ([]models.Candidate, error) {
			return h.Client.SearchMetronByTitle(ctx, "Batman", "1", "")
		})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
