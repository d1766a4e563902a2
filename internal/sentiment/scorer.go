// Package sentiment maps raw review text to a bounded polarity score.
//
// The scorer is a pure function of the text: lexicon lookups with negation
// flips and intensity boosters, summed and squashed onto [-1,1]. It never
// fails; empty or non-textual input scores neutral.
package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// normAlpha controls the squashing of the summed valence; with the usual
// [-4,4] word intensities a handful of strong words saturates the scale.
const normAlpha = 15.0

// negationScale dampens a flipped valence ("not great" is negative, but
// weaker than "terrible").
const negationScale = 0.74

// Score returns the compound sentiment of text in [-1,1]. Deterministic and
// stateless; worst case (no scorable tokens) returns 0.
func Score(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for i, tok := range tokens {
		valence, ok := lexicon[tok]
		if !ok {
			continue
		}

		// Look back up to two tokens for boosters and negators.
		boost := 0.0
		negated := false
		for back := 1; back <= 2 && i-back >= 0; back++ {
			prev := tokens[i-back]
			if b, ok := boosters[prev]; ok {
				boost += b
			}
			if negators[prev] {
				negated = true
			}
		}

		if valence > 0 {
			valence += boost
		} else {
			valence -= boost
		}
		if negated {
			valence = -valence * negationScale
		}
		sum += valence
	}

	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normAlpha)
	return clamp(score, -1, 1)
}

// tokenize sanitizes to lowercase letters and whitespace, then splits.
// Non-text tokens are stripped rather than failing.
func tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case r == '\'':
			// drop apostrophes so "don't" matches "dont"
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
