package utils

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Suggest returns up to limit candidates that look like input, closest
// first. Candidates containing input match regardless of distance.
func Suggest(input string, candidates []string, limit int) []string {
	if input == "" || limit <= 0 {
		return nil
	}
	needle := strings.ToLower(input)
	maxDistance := len(needle) / 3
	if maxDistance < 2 {
		maxDistance = 2
	}

	type match struct {
		candidate string
		distance  int
	}
	var matches []match
	for _, c := range candidates {
		lower := strings.ToLower(c)
		if lower == needle {
			continue
		}
		d := edlib.LevenshteinDistance(needle, lower)
		if strings.Contains(lower, needle) {
			d = 0
		}
		if d <= maxDistance {
			matches = append(matches, match{candidate: c, distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].candidate < matches[j].candidate
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.candidate
	}
	return out
}
