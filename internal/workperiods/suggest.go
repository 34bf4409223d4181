package workperiods

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestDistance is the maximum edit distance for a did-you-mean match.
const suggestDistance = 3

// SuggestStatus resolves a possibly misspelled status token. Exact matches
// (name or label) win; otherwise the closest candidate within the edit
// distance budget is proposed.
func SuggestStatus(token string) (Status, bool) {
	if status, ok := ParseStatus(token); ok {
		return status, true
	}
	needle := strings.ToLower(strings.TrimSpace(token))
	if needle == "" {
		return StatusUndefined, false
	}
	best := StatusUndefined
	bestDist := suggestDistance + 1
	for _, status := range Statuses() {
		for _, candidate := range []string{string(status), strings.ToLower(status.Label())} {
			if d := levenshtein.ComputeDistance(needle, candidate); d < bestDist {
				best, bestDist = status, d
			}
		}
	}
	return best, bestDist <= suggestDistance
}

// SuggestSort resolves a possibly misspelled sort criteria token the same
// way.
func SuggestSort(token string) (SortBy, bool) {
	needle := strings.ToLower(strings.TrimSpace(token))
	if needle == "" {
		return SortByUserHandle, false
	}
	best := SortByUserHandle
	bestDist := suggestDistance + 1
	for _, criteria := range SortCycle() {
		candidate := strings.ToLower(string(criteria))
		if needle == candidate {
			return criteria, true
		}
		if d := levenshtein.ComputeDistance(needle, candidate); d < bestDist {
			best, bestDist = criteria, d
		}
	}
	return best, bestDist <= suggestDistance
}
