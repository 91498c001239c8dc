// Package fuzzy resolves noisy recognizer tokens against small fixed
// lexicons by edit distance.
package fuzzy

import (
	"github.com/agext/levenshtein"

	"github.com/lojista-tools/recibo/internal/normalize"
)

// maxDistance is the largest edit distance still considered a match.
const maxDistance = 2

// Lexicon is an ordered list of canonical entries. Earlier entries win ties.
type Lexicon []string

// Pick returns the lexicon entry nearest to the token when its edit
// distance is at most 2, else the folded, uppercased token unchanged. The
// bool reports whether a lexicon entry was matched.
func (l Lexicon) Pick(token string) (string, bool) {
	clean := normalize.CleanUpper(token)
	if clean == "" {
		return clean, false
	}
	best := clean
	bestDist := -1
	for _, entry := range l {
		d := levenshtein.Distance(clean, entry, nil)
		if bestDist < 0 || d < bestDist {
			best, bestDist = entry, d
		}
	}
	if bestDist >= 0 && bestDist <= maxDistance {
		return best, true
	}
	return clean, false
}

// Distance is the unit-cost edit distance between two strings.
func Distance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}
