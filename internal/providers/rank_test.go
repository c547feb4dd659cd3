package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noircollect/pkg/models"
)

func TestSelectBestCandidatePrefersIssueMatch(t *testing.T) {
	candidates := []models.Candidate{
		{Title: "Batman", IssueNumber: "2", CoverURL: "x", Synopsis: "y", Source: "comicvine"},
		{Title: "Batman", IssueNumber: "1", Source: "openlibrary"},
	}

	// Issue match (+3) beats cover+synopsis (+2) when titles tie.
	best := SelectBestCandidate(candidates, "Batman", "#1")
	require.NotNil(t, best)
	assert.Equal(t, "openlibrary", best.Source)
}

func TestSelectBestCandidateTitleSubstring(t *testing.T) {
	candidates := []models.Candidate{
		{Title: "Superman", IssueNumber: "", Source: "a"},
		{Title: "Batman: The Killing Joke", IssueNumber: "", Source: "b"},
	}

	best := SelectBestCandidate(candidates, "batman", "")
	require.NotNil(t, best)
	assert.Equal(t, "b", best.Source)
}

func TestSelectBestCandidateTieKeepsEarliest(t *testing.T) {
	candidates := []models.Candidate{
		{Title: "Batman", IssueNumber: "1", Source: "first"},
		{Title: "Batman", IssueNumber: "1", Source: "second"},
	}

	best := SelectBestCandidate(candidates, "Batman", "1")
	require.NotNil(t, best)
	assert.Equal(t, "first", best.Source)
}

func TestSelectBestCandidateEmpty(t *testing.T) {
	assert.Nil(t, SelectBestCandidate(nil, "Batman", "1"))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Bruce Wayne returns.",
		StripHTML("<p>Bruce Wayne <b>returns</b>.</p>"))
	assert.Equal(t, "plain", StripHTML("  plain "))
}
