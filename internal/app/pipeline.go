package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ratinglens/internal/adapters/observability"
	"ratinglens/internal/aggregate"
	"ratinglens/internal/correct"
	"ratinglens/internal/domain"
	"ratinglens/internal/evaluate"
	"ratinglens/internal/forecast"
	"ratinglens/internal/sentiment"
	"ratinglens/internal/shared"
)

const cachePrefix = "rl:"

// PipelineService runs the batch correction-and-forecast pipeline. Each
// stage consumes the previous stage's complete output; stages fan out
// internally where the work is independent.
type PipelineService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
	cfg   shared.Config
	bank  []forecast.Model
}

func NewPipelineService(repo domain.ReviewRepository, cache domain.Cache, cfg shared.Config) *PipelineService {
	return &PipelineService{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
		bank: forecast.NewBank(forecast.BankOptions{
			SeasonLength: cfg.SeasonLength,
			AROrder:      cfg.AROrder,
			BoostRounds:  cfg.BoostRounds,
			BagSize:      cfg.BagSize,
		}),
	}
}

// RunResult is what a completed run hands back to the caller: the ranking,
// the corpus forecast of the selected model, and the manifest of everything
// that was skipped along the way.
type RunResult struct {
	Manifest domain.RunManifest
	Ranking  []domain.EvaluationResult
	Forecast domain.ForecastSeries
}

// Run executes the whole pipeline. Per-review and per-strategy failures are
// isolated and recorded in the manifest; storage and context errors abort.
// The config is validated by the caller before Run is reached.
func (s *PipelineService) Run(ctx context.Context) (RunResult, error) {
	var res RunResult

	reviews, err := s.repo.ListReviews(ctx)
	if err != nil {
		return res, fmt.Errorf("load corpus: %w", err)
	}
	res.Manifest.TotalReviews = len(reviews)

	valid := s.validate(reviews, &res.Manifest)
	log.Info().
		Int("total", len(reviews)).
		Int("dropped", len(res.Manifest.DroppedReviews)).
		Msg("corpus loaded")

	scored, err := s.score(ctx, valid)
	if err != nil {
		return res, err
	}

	corrected := s.correct(scored)

	start := time.Now()
	riskOpts := aggregate.RiskOptions{RatioThreshold: s.cfg.RiskRatioThresh, MinSupport: s.cfg.RiskMinSupport}
	byProduct := aggregate.Monthly(corrected, domain.GroupByProduct, riskOpts)
	byCategory := aggregate.Monthly(corrected, domain.GroupByCategory, riskOpts)
	corpus := aggregate.CorpusSeries(corrected)
	observability.ObserveStage("aggregate", time.Since(start))

	ranked, selected, err := s.evaluateBank(ctx, corpus, &res.Manifest)
	if err != nil {
		return res, err
	}
	res.Ranking = ranked
	res.Manifest.SelectedModel = selected
	for _, r := range ranked {
		if r.Evaluable {
			res.Manifest.EvaluatedModels++
		}
	}

	var productForecasts, categoryForecasts []domain.ForecastSeries
	var artifact []byte
	if selected != "" {
		winner := s.model(selected)
		res.Forecast, artifact, err = s.refitAndForecast(winner, corpus)
		if err != nil {
			// recoverable refit failures only shrink the output set
			res.Manifest.SkippedGroups = append(res.Manifest.SkippedGroups,
				domain.SkippedItem{Key: "corpus", Reason: err.Error()})
		}
		productForecasts = s.groupForecasts(winner, byProduct, &res.Manifest)
		categoryForecasts = s.groupForecasts(winner, byCategory, &res.Manifest)
	}

	if err := s.persist(ctx, corrected, append(byProduct, byCategory...), ranked, productForecasts, categoryForecasts, selected, artifact, res.Forecast); err != nil {
		return res, err
	}

	if err := s.cache.InvalidatePrefix(ctx, cachePrefix); err != nil {
		log.Warn().Err(err).Msg("cache sweep failed")
	}

	log.Info().
		Str("selected", selected).
		Int("skipped_models", len(res.Manifest.SkippedModels)).
		Int("skipped_groups", len(res.Manifest.SkippedGroups)).
		Msg("pipeline run completed")
	return res, nil
}

func (s *PipelineService) validate(rs []domain.Review, manifest *domain.RunManifest) []domain.Review {
	valid := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if reason := malformedReason(r); reason != "" {
			observability.ObserveReview("dropped")
			manifest.DroppedReviews = append(manifest.DroppedReviews,
				domain.SkippedItem{Key: r.ReviewID, Reason: reason})
			continue
		}
		valid = append(valid, r)
	}
	return valid
}

func malformedReason(r domain.Review) string {
	switch {
	case r.ReviewID == "":
		return domain.ErrMalformedReview.Error() + ": missing review_id"
	case r.ProductID == "":
		return domain.ErrMalformedReview.Error() + ": missing product_id"
	case r.Category == "":
		return domain.ErrMalformedReview.Error() + ": missing category"
	case r.Timestamp.IsZero():
		return domain.ErrMalformedReview.Error() + ": missing timestamp"
	case r.RawRating != r.RawRating: // NaN
		return domain.ErrMalformedReview.Error() + ": rating not a number"
	default:
		return ""
	}
}

// score fans the pure sentiment scorer out over the corpus under a weighted
// semaphore, the same shape as a bounded ingest.
func (s *PipelineService) score(ctx context.Context, rs []domain.Review) ([]domain.ScoredReview, error) {
	start := time.Now()
	defer func() { observability.ObserveStage("score", time.Since(start)) }()

	out := make([]domain.ScoredReview, len(rs))
	sem := semaphore.NewWeighted(int64(s.cfg.Workers))
	var wg sync.WaitGroup

	for i, r := range rs {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, r domain.Review) {
			defer wg.Done()
			defer sem.Release(1)
			score := sentiment.Score(r.Text)
			out[i] = domain.ScoredReview{
				Review:         r,
				SentimentScore: score,
				SentimentLabel: domain.LabelSentiment(score),
			}
			observability.ObserveReview("scored")
		}(i, r)
	}
	wg.Wait()
	return out, nil
}

func (s *PipelineService) correct(rs []domain.ScoredReview) []domain.CorrectedReview {
	start := time.Now()
	defer func() { observability.ObserveStage("correct", time.Since(start)) }()

	opts := correct.Options{Weight: s.cfg.CorrectionWeight, OverratedThreshold: s.cfg.OverratedThresh}
	out := make([]domain.CorrectedReview, len(rs))
	for i, r := range rs {
		out[i] = correct.Apply(r, opts)
	}
	return out
}

func (s *PipelineService) evaluateBank(ctx context.Context, corpus domain.ForecastSeries, manifest *domain.RunManifest) ([]domain.EvaluationResult, string, error) {
	start := time.Now()
	defer func() { observability.ObserveStage("evaluate", time.Since(start)) }()

	train, test := evaluate.Split(corpus, s.cfg.HorizonMonths)
	ranked, err := evaluate.Run(ctx, s.bank, train, test)
	if err != nil {
		return nil, "", fmt.Errorf("evaluate bank: %w", err)
	}
	for _, r := range ranked {
		if !r.Evaluable {
			manifest.SkippedModels = append(manifest.SkippedModels,
				domain.SkippedItem{Key: r.ModelName, Reason: r.SkipReason})
		}
	}
	return ranked, evaluate.Select(ranked), nil
}

func (s *PipelineService) model(name string) forecast.Model {
	for _, m := range s.bank {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// refitAndForecast retrains the winner on the full corpus series and
// produces the forward forecast plus the serialized artifact.
func (s *PipelineService) refitAndForecast(m forecast.Model, corpus domain.ForecastSeries) (domain.ForecastSeries, []byte, error) {
	start := time.Now()
	fitted, err := m.Fit(corpus, s.cfg.HorizonMonths)
	observability.ObserveModelFit(m.Name(), time.Since(start))
	if err != nil {
		return domain.ForecastSeries{}, nil, err
	}
	blob, err := forecast.MarshalArtifact(fitted)
	if err != nil {
		return domain.ForecastSeries{}, nil, fmt.Errorf("marshal artifact: %w", err)
	}
	out := fitted.Predict(s.cfg.HorizonMonths)
	out.GroupKey = "corpus"
	return out, blob, nil
}

// groupForecasts fits the selected model per group where history allows.
// Groups that fail the admission checks are recorded, not fatal.
func (s *PipelineService) groupForecasts(m forecast.Model, aggs []domain.MonthlyAggregate, manifest *domain.RunManifest) []domain.ForecastSeries {
	seen := map[string]bool{}
	var out []domain.ForecastSeries
	for _, a := range aggs {
		if seen[a.GroupKey] {
			continue
		}
		seen[a.GroupKey] = true

		series := aggregate.Series(aggs, a.GroupKey, aggregate.MeanCorrected)
		fitted, err := m.Fit(series, s.cfg.HorizonMonths)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientHistory) || errors.Is(err, domain.ErrDegenerateSeries) {
				manifest.SkippedGroups = append(manifest.SkippedGroups,
					domain.SkippedItem{Key: string(a.GroupBy) + ":" + a.GroupKey, Reason: err.Error()})
				continue
			}
			// the bank only fails with the recoverable series errors, but
			// don't let a surprise kill the whole output set either
			log.Error().Str("group", a.GroupKey).Err(err).Msg("group fit failed")
			manifest.SkippedGroups = append(manifest.SkippedGroups,
				domain.SkippedItem{Key: string(a.GroupBy) + ":" + a.GroupKey, Reason: err.Error()})
			continue
		}
		f := fitted.Predict(s.cfg.HorizonMonths)
		f.GroupKey = a.GroupKey
		out = append(out, f)
	}
	return out
}

func (s *PipelineService) persist(
	ctx context.Context,
	corrected []domain.CorrectedReview,
	aggs []domain.MonthlyAggregate,
	ranked []domain.EvaluationResult,
	productForecasts, categoryForecasts []domain.ForecastSeries,
	selected string,
	artifact []byte,
	corpusForecast domain.ForecastSeries,
) error {
	start := time.Now()
	defer func() { observability.ObserveStage("persist", time.Since(start)) }()

	if err := s.repo.ReplaceCorrectedReviews(ctx, corrected); err != nil {
		return fmt.Errorf("persist corrected reviews: %w", err)
	}
	if err := s.repo.ReplaceAggregates(ctx, aggs); err != nil {
		return fmt.Errorf("persist aggregates: %w", err)
	}
	if err := s.repo.ReplaceEvaluations(ctx, ranked); err != nil {
		return fmt.Errorf("persist evaluations: %w", err)
	}
	if err := s.repo.ReplaceForecasts(ctx, domain.GroupByProduct, productForecasts); err != nil {
		return fmt.Errorf("persist product forecasts: %w", err)
	}
	if err := s.repo.ReplaceForecasts(ctx, domain.GroupByCategory, categoryForecasts); err != nil {
		return fmt.Errorf("persist category forecasts: %w", err)
	}
	var corpusSet []domain.ForecastSeries
	if corpusForecast.Len() > 0 {
		corpusSet = append(corpusSet, corpusForecast)
	}
	if err := s.repo.ReplaceForecasts(ctx, domain.GroupByCorpus, corpusSet); err != nil {
		return fmt.Errorf("persist corpus forecast: %w", err)
	}
	if selected != "" && artifact != nil {
		if err := s.repo.SaveModelArtifact(ctx, selected, artifact); err != nil {
			return fmt.Errorf("persist artifact: %w", err)
		}
	}
	return nil
}
