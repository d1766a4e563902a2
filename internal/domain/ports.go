package domain

import "context"

// ReviewRepository is the storage port for the pipeline and the API.
//
// Derived collections (corrected reviews, aggregates, evaluations,
// forecasts) are recomputed wholesale per run, so their writes replace the
// previous run's rows instead of merging into them.
type ReviewRepository interface {
	// Write paths (pipeline)
	InsertReviews(ctx context.Context, rs []Review) error
	ReplaceCorrectedReviews(ctx context.Context, rs []CorrectedReview) error
	ReplaceAggregates(ctx context.Context, as []MonthlyAggregate) error
	ReplaceEvaluations(ctx context.Context, es []EvaluationResult) error
	ReplaceForecasts(ctx context.Context, groupBy GroupBy, fs []ForecastSeries) error
	SaveModelArtifact(ctx context.Context, modelName string, blob []byte) error

	// Read paths (API)
	ListReviews(ctx context.Context) ([]Review, error)
	ListCorrectedReviews(ctx context.Context, productID string, pg PageQuery) ([]CorrectedReview, error)
	ListAggregates(ctx context.Context, groupBy GroupBy, key string) ([]MonthlyAggregate, error)
	ListEvaluations(ctx context.Context) ([]EvaluationResult, error)
	GetForecast(ctx context.Context, groupBy GroupBy, key string) (ForecastSeries, error)
	GetOverview(ctx context.Context) (Overview, error)
	LoadModelArtifact(ctx context.Context, modelName string) ([]byte, error)
}

// Cache is the read-path cache port. InvalidatePrefix lets the pipeline
// sweep all derived entries after a run rewrites the tables.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type PageQuery struct {
	Limit int
	Sort  string
}
