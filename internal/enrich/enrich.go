// Package enrich fills missing covers and synopses on stored rows from the
// external catalogs.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"noircollect/internal/comics"
	"noircollect/internal/providers"
	"noircollect/pkg/models"
)

const defaultLimit = 50

// Enricher runs the bulk enrichment loop. It is deliberately sequential,
// pausing Delay between rows to stay within the providers' informal rate
// limits; shared third-party quota beats throughput here.
type Enricher struct {
	Repo   *comics.Repo
	Client *providers.Client
	Log    *slog.Logger
	Delay  time.Duration
}

func New(repo *comics.Repo, client *providers.Client, log *slog.Logger) *Enricher {
	return &Enricher{
		Repo:   repo,
		Client: client,
		Log:    log,
		Delay:  time.Second,
	}
}

// Summary counts what one enrichment run did.
type Summary struct {
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
	Total   int `json:"total"`
}

// Run processes up to limit rows missing cover or synopsis. Per row it
// tries a barcode lookup first, then the title providers in priority
// order, applying the ranker per provider and stopping at the first usable
// match. Only fields currently absent are written; enrichment never
// overwrites existing data. Partial progress survives cancellation.
func (e *Enricher) Run(ctx context.Context, limit int) (Summary, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := e.Repo.MissingArtwork(ctx, limit)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(rows)}
	for i := range rows {
		row := &rows[i]
		e.enrichOne(ctx, row, &summary)

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		case <-time.After(e.Delay):
		}
	}

	e.Log.Info("bulk enrich finished",
		"updated", summary.Updated, "skipped", summary.Skipped,
		"errors", summary.Errors, "total", summary.Total)
	return summary, nil
}

func (e *Enricher) enrichOne(ctx context.Context, row *models.ComicRecord, summary *Summary) {
	matched := e.match(ctx, row)
	if matched == nil || (matched.CoverURL == "" && matched.Synopsis == "") {
		summary.Errors++
		return
	}

	var coverURL, synopsis *string
	if matched.CoverURL != "" && row.CoverURL == nil {
		coverURL = &matched.CoverURL
	}
	if matched.Synopsis != "" && row.Synopsis == nil {
		synopsis = &matched.Synopsis
	}
	if coverURL == nil && synopsis == nil {
		summary.Skipped++
		return
	}

	if err := e.Repo.SetArtwork(ctx, row.ID, coverURL, synopsis); err != nil {
		e.Log.Error("enrich update failed", "id", row.ID, "err", err)
		summary.Errors++
		return
	}
	summary.Updated++
}

// match walks the provider chain for one row: ISBN-shaped barcodes hit
// Open Library directly, then ComicVine, Google Books and Metron by title.
func (e *Enricher) match(ctx context.Context, row *models.ComicRecord) *models.Candidate {
	if row.Barcode != nil {
		cleaned := comics.CleanBarcode(*row.Barcode)
		if len(cleaned) == 10 || len(cleaned) == 13 {
			results := e.safe("openlibrary", func() ([]models.Candidate, error) {
				return e.Client.SearchOpenLibraryByISBN(ctx, cleaned)
			})
			if len(results) > 0 {
				return &results[0]
			}
		}
	}

	searchTitle := row.DisplayTitle()

	candidates := e.safe("comicvine", func() ([]models.Candidate, error) {
		return e.Client.SearchComicVineByTitle(ctx, searchTitle, row.IssueNumber)
	})
	if m := providers.SelectBestCandidate(candidates, searchTitle, row.IssueNumber); m != nil {
		return m
	}

	candidates = e.safe("googlebooks", func() ([]models.Candidate, error) {
		return e.Client.SearchGoogleBooksByTitle(ctx, searchTitle)
	})
	if m := providers.SelectBestCandidate(candidates, searchTitle, row.IssueNumber); m != nil {
		return m
	}

	candidates = e.safe("metron", func() ([]models.Candidate, error) {
		return e.Client.SearchMetronByTitle(ctx, searchTitle, row.IssueNumber, row.Publisher)
	})
	return providers.SelectBestCandidate(candidates, searchTitle, row.IssueNumber)
}

func (e *Enricher) safe(name string, fn func() ([]models.Candidate, error)) []models.Candidate {
	results, err := fn()
	if err != nil {
		e.Log.Debug("enrich provider search failed", "provider", name, "err", err)
		return nil
	}
	return results
}
