package domain

import "time"

// Review is the immutable input record supplied by the external loader.
// It is never mutated after load; every downstream stage produces a fresh
// collection instead.
type Review struct {
	ReviewID  string
	ProductID string
	Category  string
	Timestamp time.Time
	RawRating float64 // stars, expected in [1,5]
	Text      string
}

// SentimentLabel buckets a sentiment score for reporting.
type SentimentLabel string

const (
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentPositive SentimentLabel = "positive"
)

// LabelSentiment maps a compound score onto the negative/neutral/positive
// buckets using the +-0.2 cutoffs.
func LabelSentiment(score float64) SentimentLabel {
	switch {
	case score < -0.2:
		return SentimentNegative
	case score > 0.2:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}

// ScoredReview is a Review plus its text-derived sentiment. One-to-one with
// the Review it was built from.
type ScoredReview struct {
	Review
	SentimentScore float64 // in [-1,1]
	SentimentLabel SentimentLabel
}

// CorrectedReview is a ScoredReview plus the sentiment-blended rating.
// CorrectedRating is continuous and clamped to [1,5]. OverratedIndex is the
// positive rating gap normalised onto [0,1] (a gap of 4 stars maps to 1.0).
type CorrectedReview struct {
	ScoredReview
	CorrectedRating float64
	IsOverrated     bool
	OverratedIndex  float64
}
