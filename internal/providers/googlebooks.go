package providers

import (
	"context"
	"encoding/json"
	"net/url"

	"noircollect/pkg/models"
)

type gbImageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

type gbVolumeInfo struct {
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	Description string       `json:"description"`
	ImageLinks  gbImageLinks `json:"imageLinks"`
}

type gbItem struct {
	ID         string       `json:"id"`
	VolumeInfo gbVolumeInfo `json:"volumeInfo"`
}

type gbResponse struct {
	Items []gbItem `json:"items"`
}

func candidateFromGoogleBooks(item gbItem) models.Candidate {
	info := item.VolumeInfo

	coverURL := info.ImageLinks.Thumbnail
	if coverURL == "" {
		coverURL = info.ImageLinks.SmallThumbnail
	}

	metadata, _ := json.Marshal(item)
	return models.Candidate{
		Title:       info.Title,
		IssueNumber: "",
		Publisher:   info.Publisher,
		CoverURL:    coverURL,
		Synopsis:    StripHTML(info.Description),
		Metadata:    metadata,
		Source:      "googlebooks",
	}
}

func (c *Client) searchGoogleBooks(ctx context.Context, query string) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", "5")
	if c.Cfg.GoogleBooksAPIKey != "" {
		params.Set("key", c.Cfg.GoogleBooksAPIKey)
	}

	var resp gbResponse
	if err := c.getJSON(ctx, c.Cfg.GoogleBooksBase+"/volumes", params, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		out = append(out, candidateFromGoogleBooks(item))
	}
	return out, nil
}

func (c *Client) SearchGoogleBooksByTitle(ctx context.Context, title string) ([]models.Candidate, error) {
	return c.searchGoogleBooks(ctx, "intitle:"+title)
}

func (c *Client) SearchGoogleBooksByISBN(ctx context.Context, isbn string) ([]models.Candidate, error) {
	return c.searchGoogleBooks(ctx, "isbn:"+isbn)
}
