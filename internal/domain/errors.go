package domain

import "errors"

var (
	// ErrNotFound is returned by read paths when no row matches.
	ErrNotFound = errors.New("ratinglens: not found")

	// ErrInsufficientHistory means a series is too short for a strategy's
	// lag or seasonality requirements. Recovered locally: the strategy is
	// excluded from ranking, the run continues.
	ErrInsufficientHistory = errors.New("ratinglens: insufficient history")

	// ErrDegenerateSeries means a zero-variance series. Same recovery as
	// ErrInsufficientHistory.
	ErrDegenerateSeries = errors.New("ratinglens: degenerate series")

	// ErrMalformedReview marks a review missing a required field. The
	// review is dropped and counted; the run continues.
	ErrMalformedReview = errors.New("ratinglens: malformed review")
)
