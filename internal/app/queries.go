package app

import (
	"context"
	"fmt"
	"time"

	"ratinglens/internal/domain"
)

// QueryService is the cached read side consumed by the dashboard API.
type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) ttlSec() int { return int(s.cacheTTL.Seconds()) }

func (s *QueryService) Overview(ctx context.Context) (domain.Overview, error) {
	key := cachePrefix + "overview"
	var o domain.Overview
	if ok, _ := s.cache.Get(ctx, key, &o); ok {
		return o, nil
	}
	o, err := s.repo.GetOverview(ctx)
	if err != nil {
		return domain.Overview{}, err
	}
	_ = s.cache.Set(ctx, key, o, s.ttlSec())
	return o, nil
}

func (s *QueryService) CorrectedReviews(ctx context.Context, productID string, pg domain.PageQuery) ([]domain.CorrectedReview, error) {
	key := fmt.Sprintf("%sreviews:%s:%d", cachePrefix, productID, pg.Limit)
	var out []domain.CorrectedReview
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListCorrectedReviews(ctx, productID, pg)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttlSec())
	return out, nil
}

func (s *QueryService) Aggregates(ctx context.Context, groupBy domain.GroupBy, groupKey string) ([]domain.MonthlyAggregate, error) {
	key := fmt.Sprintf("%saggs:%s:%s", cachePrefix, groupBy, groupKey)
	var out []domain.MonthlyAggregate
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.ListAggregates(ctx, groupBy, groupKey)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttlSec())
	return out, nil
}

// ModelRanking returns the stored evaluation ranking plus the selected
// production model (the top evaluable entry).
func (s *QueryService) ModelRanking(ctx context.Context) ([]domain.EvaluationResult, string, error) {
	key := cachePrefix + "ranking"
	var out []domain.EvaluationResult
	if ok, _ := s.cache.Get(ctx, key, &out); !ok {
		var err error
		out, err = s.repo.ListEvaluations(ctx)
		if err != nil {
			return nil, "", err
		}
		_ = s.cache.Set(ctx, key, out, s.ttlSec())
	}
	selected := ""
	for _, r := range out {
		if r.Evaluable {
			selected = r.ModelName
			break
		}
	}
	return out, selected, nil
}

func (s *QueryService) Forecast(ctx context.Context, groupBy domain.GroupBy, groupKey string) (domain.ForecastSeries, error) {
	key := fmt.Sprintf("%sforecast:%s:%s", cachePrefix, groupBy, groupKey)
	var out domain.ForecastSeries
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.GetForecast(ctx, groupBy, groupKey)
	if err != nil {
		return domain.ForecastSeries{}, err
	}
	_ = s.cache.Set(ctx, key, out, s.ttlSec())
	return out, nil
}
