package providers

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

type cvName struct {
	Name string `json:"name"`
}

type cvVolume struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Publisher *cvName `json:"publisher"`
}

type cvImage struct {
	SuperURL    string `json:"super_url"`
	OriginalURL string `json:"original_url"`
}

type cvIssue struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	IssueNumber    string    `json:"issue_number"`
	IssueNumberAlt string    `json:"issueNumber"`
	Volume         *cvVolume `json:"volume"`
	Image          *cvImage  `json:"image"`
	CoverDate      string    `json:"cover_date"`
	Description    string    `json:"description"`
	Deck           string    `json:"deck"`
	Publisher      string    `json:"publisher"`
}

type cvVolumesResponse struct {
	Results []cvVolume `json:"results"`
}

type cvIssuesResponse struct {
	Results []cvIssue `json:"results"`
}

// candidateFromComicVine maps one ComicVine issue into the common shape,
// preferring the volume name over the story name and stripping HTML from
// the description.
func candidateFromComicVine(issue cvIssue) models.Candidate {
	title := issue.Name
	publisher := issue.Publisher
	if issue.Volume != nil {
		if issue.Volume.Name != "" {
			title = issue.Volume.Name
		}
		if issue.Volume.Publisher != nil && issue.Volume.Publisher.Name != "" {
			publisher = issue.Volume.Publisher.Name
		}
	}

	coverURL := ""
	if issue.Image != nil {
		coverURL = issue.Image.SuperURL
		if coverURL == "" {
			coverURL = issue.Image.OriginalURL
		}
	}

	description := issue.Description
	if description == "" {
		description = issue.Deck
	}

	metadata, _ := json.Marshal(issue)
	return models.Candidate{
		Title:       title,
		IssueNumber: comics.NormalizeIssueNumber(firstNonEmptyStr(issue.IssueNumber, issue.IssueNumberAlt)),
		Publisher:   publisher,
		CoverURL:    coverURL,
		Synopsis:    StripHTML(description),
		Metadata:    metadata,
		Source:      "comicvine",
	}
}

// SearchComicVineByTitle is a two-stage lookup: volumes matching the title
// first, then issues for the top volumes, filtered by issue number when
// one is given.
func (c *Client) SearchComicVineByTitle(ctx context.Context, title, issueNumber string) ([]models.Candidate, error) {
	if !c.Cfg.HasComicVine() {
		return nil, nil
	}

	params := c.cvParams()
	params.Set("filter", "name:"+title)
	params.Set("sort", "name:asc")
	params.Set("limit", "5")
	params.Set("field_list", "id,name,publisher")

	var volumes cvVolumesResponse
	if err := c.getJSON(ctx, c.Cfg.ComicVineBase+"/volumes/", params, nil, &volumes); err != nil {
		return nil, err
	}

	top := volumes.Results
	if len(top) > 3 {
		top = top[:3]
	}

	var out []models.Candidate
	for _, volume := range top {
		params := c.cvParams()
		filter := "volume:" + strconv.FormatInt(volume.ID, 10)
		limit := "3"
		if issueNumber != "" {
			filter += ",issue_number:" + issueNumber
			limit = "5"
		}
		params.Set("filter", filter)
		params.Set("sort", "cover_date:desc")
		params.Set("limit", limit)
		params.Set("field_list", "id,name,issue_number,volume,image,cover_date,description,deck")

		var issues cvIssuesResponse
		if err := c.getJSON(ctx, c.Cfg.ComicVineBase+"/issues/", params, nil, &issues); err != nil {
			return nil, err
		}
		for _, issue := range issues.Results {
			out = append(out, candidateFromComicVine(issue))
		}
	}
	return out, nil
}

func (c *Client) cvParams() url.Values {
	params := url.Values{}
	params.Set("api_key", c.Cfg.ComicVineAPIKey)
	params.Set("format", "json")
	return params
}

func firstNonEmptyStr(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
