// Package correct blends the stated star rating with the sentiment-inferred
// rating into a corrected rating per review.
package correct

import (
	"ratinglens/internal/domain"
)

// Options are the calibration knobs for the correction. Both are tunable
// configuration, not derived constants.
type Options struct {
	// Weight w in [0,1] given to the stated rating; 1-w goes to the
	// sentiment-inferred rating. Default 0.5: neither signal alone is
	// trustworthy.
	Weight float64
	// OverratedThreshold flags a review when raw minus corrected exceeds
	// it. Default 0.75.
	OverratedThreshold float64
}

func DefaultOptions() Options {
	return Options{Weight: 0.5, OverratedThreshold: 0.75}
}

// Apply derives the corrected rating for a scored review. Pure and total:
// out-of-range raw ratings are clamped to [1,5] before blending, the result
// is clamped after, and there are no error conditions.
func Apply(sr domain.ScoredReview, opts Options) domain.CorrectedReview {
	raw := clamp(sr.RawRating, 1, 5)

	// sentiment score -1..+1 maps linearly onto the 1..5 star scale
	sentimentRating := 1 + (sr.SentimentScore+1)*2

	corrected := opts.Weight*raw + (1-opts.Weight)*sentimentRating
	corrected = clamp(corrected, 1, 5)

	gap := raw - corrected
	return domain.CorrectedReview{
		ScoredReview:    sr,
		CorrectedRating: corrected,
		IsOverrated:     gap > opts.OverratedThreshold,
		OverratedIndex:  clamp(gap/4, 0, 1),
	}
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
