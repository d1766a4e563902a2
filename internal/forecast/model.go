// Package forecast holds the bank of interchangeable forecasting strategies.
//
// Every strategy consumes and produces a domain.ForecastSeries through the
// same Fit/Predict contract, fails with domain.ErrInsufficientHistory when
// the series is shorter than its feature or seasonality window, and with
// domain.ErrDegenerateSeries on constant input. Callers recover from both by
// excluding the strategy, never by aborting the run.
package forecast

import (
	"fmt"

	"ratinglens/internal/domain"
)

// Model is one forecasting strategy before fitting.
type Model interface {
	Name() string
	SupportsSeasonality() bool
	Fit(series domain.ForecastSeries, horizon int) (FittedModel, error)
}

// FittedModel predicts future points and serializes its state for the
// artifact store. Implementations are plain structs with exported fields so
// encoding/json covers Marshal.
type FittedModel interface {
	Name() string
	Predict(horizon int) domain.ForecastSeries
}

// BankOptions carry the tunables shared across the bank.
type BankOptions struct {
	SeasonLength int // points per seasonal cycle, 12 for monthly data
	AROrder      int
	BoostRounds  int
	BagSize      int
}

func DefaultBankOptions() BankOptions {
	return BankOptions{SeasonLength: 12, AROrder: 3, BoostRounds: 50, BagSize: 20}
}

// NewBank returns the full strategy set in a fixed order. The bagged
// ensemble is the production default; the evaluator re-derives the actual
// selection every run.
func NewBank(opts BankOptions) []Model {
	gb := newBoostedStumps(opts.BoostRounds)
	return []Model{
		newSeasonalTrend(opts.SeasonLength),
		newAutoregressive(opts.AROrder),
		gb,
		newBaggedEnsemble(gb, opts.BagSize),
		newBoostedLAD(opts.BoostRounds),
	}
}

// checkSeries applies the shared admission checks: minimum length first
// (a length-1 series is an InsufficientHistory case for every strategy),
// then zero variance.
func checkSeries(s domain.ForecastSeries, minLen int) error {
	if s.Len() < minLen {
		return fmt.Errorf("%w: %d points, need %d", domain.ErrInsufficientHistory, s.Len(), minLen)
	}
	vals := s.Values()
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return fmt.Errorf("%w: constant value %v", domain.ErrDegenerateSeries, lo)
	}
	return nil
}

// monthsBetween counts calendar months from a to b; series gaps stay gaps
// instead of collapsing onto consecutive indices.
func monthsBetween(a, b domain.YearMonth) int {
	return (b.Year-a.Year)*12 + int(b.Month) - int(a.Month)
}

// futureMonths enumerates the h months after last.
func futureMonths(last domain.YearMonth, h int) []domain.YearMonth {
	out := make([]domain.YearMonth, h)
	ym := last
	for i := 0; i < h; i++ {
		ym = ym.Next()
		out[i] = ym
	}
	return out
}
