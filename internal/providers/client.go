// Package providers talks to the external metadata catalogs and maps every
// native result shape into the common Candidate record.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"noircollect/pkg/models"
	"noircollect/pkg/utils"
)

const userAgent = "noircollect/0.1 (open-source)"

// Client fans requests out to the configured catalog APIs. Providers with
// missing credentials simply return no results.
type Client struct {
	HTTP *http.Client
	Cfg  utils.Config
	Log  *slog.Logger
}

func NewClient(cfg utils.Config, log *slog.Logger) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: 12 * time.Second},
		Cfg:  cfg,
		Log:  log,
	}
}

type basicAuth struct {
	user, pass string
}

func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, auth *basicAuth, out any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if auth != nil {
		req.SetBasicAuth(auth.user, auth.pass)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// safe shields the caller from a single broken provider: a failing search
// yields an empty list, never an error.
func (c *Client) safe(name string, fn func() ([]models.Candidate, error)) []models.Candidate {
	results, err := fn()
	if err != nil {
		c.Log.Debug("provider search failed", "provider", name, "err", err)
		return nil
	}
	return results
}

// SearchAll queries all four providers concurrently and returns the
// combined, provider-tagged candidate list. Order within the result is
// fixed: metron, comicvine, openlibrary, googlebooks.
func (c *Client) SearchAll(ctx context.Context, title, issue string) []models.Candidate {
	var (
		wg             sync.WaitGroup
		cv, ol, gb, mt []models.Candidate
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		cv = c.safe("comicvine", func() ([]models.Candidate, error) {
			return c.SearchComicVineByTitle(ctx, title, issue)
		})
	}()
	go func() {
		defer wg.Done()
		ol = c.safe("openlibrary", func() ([]models.Candidate, error) {
			return c.SearchOpenLibraryByTitle(ctx, title)
		})
	}()
	go func() {
		defer wg.Done()
		gb = c.safe("googlebooks", func() ([]models.Candidate, error) {
			return c.SearchGoogleBooksByTitle(ctx, title)
		})
	}()
	go func() {
		defer wg.Done()
		mt = c.safe("metron", func() ([]models.Candidate, error) {
			return c.SearchMetronByTitle(ctx, title, issue, "")
		})
	}()
	wg.Wait()

	combined := make([]models.Candidate, 0, len(mt)+len(cv)+len(ol)+len(gb))
	combined = append(combined, mt...)
	combined = append(combined, cv...)
	combined = append(combined, ol...)
	combined = append(combined, gb...)
	return combined
}
