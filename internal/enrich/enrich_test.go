package enrich

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noircollect/internal/comics"
	"noircollect/internal/providers"
	"noircollect/pkg/database"
	"noircollect/pkg/models"
	"noircollect/pkg/utils"
)

func testEnricher(t *testing.T, mux *http.ServeMux) (*Enricher, *comics.Repo) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	cfg := utils.Config{
		OpenLibraryBase: srv.URL + "/ol",
		GoogleBooksBase: srv.URL + "/gb",
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := comics.NewRepo(db)
	e := New(repo, providers.NewClient(cfg, log), log)
	e.Delay = time.Millisecond
	return e, repo
}

func insertRow(t *testing.T, repo *comics.Repo, rec models.ComicRecord) int64 {
	t.Helper()
	rec.SignatureStatus = "none"
	rec.SlabStatus = "raw"
	rec.Metadata = []byte("{}")
	saved, err := repo.UpsertOne(context.Background(), &rec)
	require.NoError(t, err)
	return saved.ID
}

func TestRunFillsMissingFieldsByBarcode(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ol/isbn/9780785198298.json", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"title": "Secret Wars", "subtitle": "The crossover", "publishers": ["Marvel"]}`)
	})

	e, repo := testEnricher(t, mux)

	barcode := "978-0-7851-9829-8"
	id := insertRow(t, repo, models.ComicRecord{
		Title:       "Secret Wars",
		IssueNumber: "1",
		Publisher:   "Marvel",
		IsOwned:     true,
		Barcode:     &barcode,
	})

	summary, err := e.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, 1, summary.Total)

	row, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, row.CoverURL)
	assert.Contains(t, *row.CoverURL, "9780785198298")
	require.NotNil(t, row.Synopsis)
	assert.Equal(t, "The crossover", *row.Synopsis)
}

func TestRunFallsBackToTitleSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gb/volumes", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": [{"id": "x", "volumeInfo": {
			"title": "Saga", "description": "Two soldiers from opposite sides.",
			"imageLinks": {"thumbnail": "http://img/saga.jpg"}}}]}`)
	})

	e, repo := testEnricher(t, mux)

	id := insertRow(t, repo, models.ComicRecord{
		Title:       "Saga",
		IssueNumber: "1",
		Publisher:   "Image",
		IsOwned:     true,
	})

	summary, err := e.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	row, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, row.CoverURL)
	assert.Equal(t, "http://img/saga.jpg", *row.CoverURL)
}

func TestRunNeverOverwritesExistingFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gb/volumes", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": [{"id": "x", "volumeInfo": {
			"title": "Saga", "description": "A new synopsis.",
			"imageLinks": {"thumbnail": "http://img/new.jpg"}}}]}`)
	})

	e, repo := testEnricher(t, mux)

	existingCover := "http://img/original.jpg"
	id := insertRow(t, repo, models.ComicRecord{
		Title:       "Saga",
		IssueNumber: "1",
		Publisher:   "Image",
		IsOwned:     true,
		CoverURL:    &existingCover,
	})

	summary, err := e.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	row, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, row.CoverURL)
	assert.Equal(t, "http://img/original.jpg", *row.CoverURL, "existing cover is kept")
	require.NotNil(t, row.Synopsis)
	assert.Equal(t, "A new synopsis.", *row.Synopsis)
}

func TestRunCountsUnmatchedRowsAsErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gb/volumes", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": []}`)
	})

	e, repo := testEnricher(t, mux)

	insertRow(t, repo, models.ComicRecord{
		Title:       "Obscure Indie",
		IssueNumber: "1",
		IsOwned:     true,
	})

	summary, err := e.Run(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 1, summary.Total)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/gb/volumes", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": []}`)
	})

	e, repo := testEnricher(t, mux)
	e.Delay = time.Minute

	insertRow(t, repo, models.ComicRecord{Title: "A", IssueNumber: "1", IsOwned: true})
	insertRow(t, repo, models.ComicRecord{Title: "B", IssueNumber: "1", IsOwned: true})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
