package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"noircollect/pkg/models"
)

type olDoc struct {
	Title            string   `json:"title"`
	Publisher        []string `json:"publisher"`
	CoverID          int64    `json:"cover_i"`
	FirstPublishYear int      `json:"first_publish_year"`
	FirstSentence    any      `json:"first_sentence"`
	ISBN             []string `json:"isbn"`
}

type olSearchResponse struct {
	Docs []olDoc `json:"docs"`
}

type olBook struct {
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	Publishers []string `json:"publishers"`
}

func candidateFromOpenLibrary(doc olDoc) models.Candidate {
	coverURL := ""
	if doc.CoverID != 0 {
		coverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverID)
	}

	metadata, _ := json.Marshal(doc)
	return models.Candidate{
		Title:       doc.Title,
		IssueNumber: "",
		Publisher:   firstNonEmptyStr(doc.Publisher...),
		CoverURL:    coverURL,
		Synopsis:    sentenceText(doc.FirstSentence),
		Metadata:    metadata,
		Source:      "openlibrary",
	}
}

// sentenceText tolerates Open Library's shifting first_sentence shapes:
// bare string, string list, or a typed value object.
func sentenceText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []any:
		if len(x) > 0 {
			if s, ok := x[0].(string); ok {
				return s
			}
		}
	case map[string]any:
		if s, ok := x["value"].(string); ok {
			return s
		}
	}
	return ""
}

func (c *Client) SearchOpenLibraryByTitle(ctx context.Context, title string) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", "5")
	params.Set("fields", "title,publisher,cover_i,first_publish_year,isbn")

	var resp olSearchResponse
	if err := c.getJSON(ctx, c.Cfg.OpenLibraryBase+"/search.json", params, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		out = append(out, candidateFromOpenLibrary(doc))
	}
	return out, nil
}

func (c *Client) SearchOpenLibraryByISBN(ctx context.Context, isbn string) ([]models.Candidate, error) {
	var book olBook
	if err := c.getJSON(ctx, c.Cfg.OpenLibraryBase+"/isbn/"+isbn+".json", nil, nil, &book); err != nil {
		return nil, err
	}
	if book.Title == "" {
		return nil, nil
	}

	metadata, _ := json.Marshal(book)
	return []models.Candidate{{
		Title:       book.Title,
		IssueNumber: "",
		Publisher:   firstNonEmptyStr(book.Publishers...),
		CoverURL:    fmt.Sprintf("https://covers.openlibrary.org/b/isbn/%s-L.jpg", isbn),
		Synopsis:    book.Subtitle,
		Metadata:    metadata,
		Source:      "openlibrary",
	}}, nil
}
