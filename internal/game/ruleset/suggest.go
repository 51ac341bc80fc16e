package ruleset

import (
	"maps"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestLimit is the largest edit distance accepted for a candidate of the
// given length.
func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Suggest returns the candidate closest to input by edit distance, compared
// case-insensitively. Ties go to the alphabetically first candidate.
//
// Postcondition: ok is false when no candidate is within the distance limit.
func Suggest(input string, candidates []string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return "", false
	}
	best, bestDist := "", -1
	for _, cand := range slices.Sorted(slices.Values(candidates)) {
		d := levenshtein.ComputeDistance(in, strings.ToLower(cand))
		if d > suggestLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, bestDist >= 0
}

// SuggestRace returns the registered race id closest to id.
func (r *Registry) SuggestRace(id string) (string, bool) {
	return Suggest(id, slices.Collect(maps.Keys(r.races)))
}

// SuggestClass returns the registered class id closest to id.
func (r *Registry) SuggestClass(id string) (string, bool) {
	return Suggest(id, slices.Collect(maps.Keys(r.classes)))
}
