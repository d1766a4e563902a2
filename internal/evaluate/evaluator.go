// Package evaluate runs every forecasting strategy against held-out data,
// computes MAE/RMSE and derives the production selection.
package evaluate

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"ratinglens/internal/domain"
	"ratinglens/internal/forecast"
)

// Split cuts the last holdout points off a series. Holdout is capped at a
// fifth of the series so training keeps the bulk of the history.
func Split(series domain.ForecastSeries, holdout int) (train, test domain.ForecastSeries) {
	if max := series.Len() / 5; holdout > max {
		holdout = max
	}
	if holdout < 1 {
		holdout = 1
	}
	cut := series.Len() - holdout
	if cut < 0 {
		cut = 0
	}
	train = domain.ForecastSeries{GroupKey: series.GroupKey, Points: series.Points[:cut]}
	test = domain.ForecastSeries{GroupKey: series.GroupKey, Points: series.Points[cut:]}
	return train, test
}

// MAE is the mean absolute error between prediction and actual.
func MAE(pred, actual []float64) float64 {
	var sum float64
	for i := range actual {
		sum += math.Abs(pred[i] - actual[i])
	}
	return sum / float64(len(actual))
}

// RMSE is the root mean squared error between prediction and actual.
func RMSE(pred, actual []float64) float64 {
	var sum float64
	for i := range actual {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(actual)))
}

// Run fits every strategy on train and scores it on test. Strategies that
// fail with the recoverable series errors come back non-evaluable with a
// reason instead of aborting the run; anything else is a real fault and
// propagates. Strategies are independent, so they fit concurrently.
func Run(ctx context.Context, models []forecast.Model, train, test domain.ForecastSeries) ([]domain.EvaluationResult, error) {
	results := make([]domain.EvaluationResult, len(models))
	g, ctx := errgroup.WithContext(ctx)

	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fitted, err := m.Fit(train, test.Len())
			if err != nil {
				if errors.Is(err, domain.ErrInsufficientHistory) || errors.Is(err, domain.ErrDegenerateSeries) {
					log.Warn().Str("model", m.Name()).Err(err).Msg("strategy skipped")
					results[i] = domain.EvaluationResult{ModelName: m.Name(), SkipReason: err.Error()}
					return nil
				}
				return err
			}
			pred := fitted.Predict(test.Len()).Values()
			actual := test.Values()
			results[i] = domain.EvaluationResult{
				ModelName: m.Name(),
				MAE:       MAE(pred, actual),
				RMSE:      RMSE(pred, actual),
				Evaluable: true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Rank(results), nil
}

// Rank orders evaluable results ascending by RMSE, ties by MAE, then by
// model name so the ordering is total and reruns are identical.
// Non-evaluable results sink to the end. Pure function; the input is not
// modified.
func Rank(results []domain.EvaluationResult) []domain.EvaluationResult {
	out := append([]domain.EvaluationResult(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Evaluable != b.Evaluable {
			return a.Evaluable
		}
		if !a.Evaluable {
			return a.ModelName < b.ModelName
		}
		if a.RMSE != b.RMSE {
			return a.RMSE < b.RMSE
		}
		if a.MAE != b.MAE {
			return a.MAE < b.MAE
		}
		return a.ModelName < b.ModelName
	})
	return out
}

// Select returns the top-ranked evaluable strategy, or "" when nothing was
// evaluable. Re-derived from the result set every run, never hardcoded.
func Select(ranked []domain.EvaluationResult) string {
	for _, r := range ranked {
		if r.Evaluable {
			return r.ModelName
		}
	}
	return ""
}
