package providers

import (
	"strings"

	"noircollect/internal/comics"
	"noircollect/pkg/models"
)

// SelectBestCandidate scores every candidate against the query and returns
// the one with the strictly highest score, ties favoring the earliest
// candidate. This is a greedy heuristic, not a guaranteed identification:
// it optimizes for usually-right and cheap to recompute.
//
// Scoring: +3 exact normalized issue-number match, +2 query title is a
// substring of the candidate title (case-insensitive), +1 cover present,
// +1 synopsis present.
func SelectBestCandidate(candidates []models.Candidate, title, issueNumber string) *models.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	queryTitle := strings.ToLower(title)
	queryIssue := comics.NormalizeIssueNumber(issueNumber)

	var best *models.Candidate
	bestScore := -1

	for i := range candidates {
		cand := &candidates[i]
		score := 0

		if queryIssue != "" && comics.NormalizeIssueNumber(cand.IssueNumber) == queryIssue {
			score += 3
		}
		if queryTitle != "" && strings.Contains(strings.ToLower(cand.Title), queryTitle) {
			score += 2
		}
		if cand.CoverURL != "" {
			score++
		}
		if cand.Synopsis != "" {
			score++
		}

		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best
}
