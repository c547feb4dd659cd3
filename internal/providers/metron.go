package providers

import (
	"context"
	"encoding/json"
	"net/url"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

type metronPublisher struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type metronSeries struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Publisher *metronPublisher `json:"publisher"`
}

type metronIssue struct {
	ID             int64         `json:"id"`
	Name           string        `json:"issue"`
	Number         string        `json:"number"`
	IssueNumberAlt string        `json:"issue_number"`
	Series         *metronSeries `json:"series"`
	Image          string        `json:"image"`
	Desc           string        `json:"desc"`
	Publisher      string        `json:"publisher"`
}

type metronResponse struct {
	Results []metronIssue `json:"results"`
}

// candidateFromMetron carries the Metron ids through so a selected match
// can be linked back to its source records.
func candidateFromMetron(issue metronIssue) models.Candidate {
	title := issue.Name
	publisher := issue.Publisher
	var seriesID int64
	if issue.Series != nil {
		if issue.Series.Name != "" {
			title = issue.Series.Name
		}
		seriesID = issue.Series.ID
		if issue.Series.Publisher != nil && issue.Series.Publisher.Name != "" {
			publisher = issue.Series.Publisher.Name
		}
	}

	metadata, _ := json.Marshal(issue)
	return models.Candidate{
		Title:          title,
		IssueNumber:    comics.NormalizeIssueNumber(firstNonEmptyStr(issue.Number, issue.IssueNumberAlt)),
		Publisher:      publisher,
		CoverURL:       issue.Image,
		Synopsis:       issue.Desc,
		MetronIssueID:  issue.ID,
		MetronSeriesID: seriesID,
		Metadata:       metadata,
		Source:         "metron",
	}
}

func (c *Client) metronAuth() *basicAuth {
	return &basicAuth{user: c.Cfg.MetronUsername, pass: c.Cfg.MetronPassword}
}

func (c *Client) SearchMetronByTitle(ctx context.Context, title, issueNumber, publisher string) ([]models.Candidate, error) {
	if !c.Cfg.HasMetron() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("series_name", title)
	params.Set("page_size", "5")
	if issueNumber != "" {
		params.Set("number", issueNumber)
	}
	if publisher != "" {
		params.Set("publisher_name", publisher)
	}

	var resp metronResponse
	if err := c.getJSON(ctx, c.Cfg.MetronBase+"/issue/", params, c.metronAuth(), &resp); err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(resp.Results))
	for _, issue := range resp.Results {
		out = append(out, candidateFromMetron(issue))
	}
	return out, nil
}

func (c *Client) SearchMetronByUPC(ctx context.Context, upc string) ([]models.Candidate, error) {
	if !c.Cfg.HasMetron() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("upc", upc)
	params.Set("page_size", "5")

	var resp metronResponse
	if err := c.getJSON(ctx, c.Cfg.MetronBase+"/issue/", params, c.metronAuth(), &resp); err != nil {
		return nil, err
	}

	out := make([]models.Candidate, 0, len(resp.Results))
	for _, issue := range resp.Results {
		out = append(out, candidateFromMetron(issue))
	}
	return out, nil
}
