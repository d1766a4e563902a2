package forecast

import (
	"ratinglens/internal/domain"
)

// seasonalTrend decomposes the series into a least-squares linear trend plus
// additive per-calendar-month seasonal indices. Needs at least two full
// seasonal cycles of history.
type seasonalTrend struct {
	seasonLength int
}

func newSeasonalTrend(seasonLength int) *seasonalTrend {
	return &seasonalTrend{seasonLength: seasonLength}
}

func (m *seasonalTrend) Name() string              { return "seasonal_trend" }
func (m *seasonalTrend) SupportsSeasonality() bool { return true }

// SeasonalTrendFit is the fitted state: trend over calendar-month index plus
// one additive index per calendar month.
type SeasonalTrendFit struct {
	ModelName string           `json:"model"`
	Intercept float64          `json:"intercept"`
	Slope     float64          `json:"slope"`
	Seasonal  map[int]float64  `json:"seasonal"` // keyed by time.Month 1..12
	LastMonth domain.YearMonth `json:"last_month"`
	LastIndex int              `json:"last_index"`
	First     domain.YearMonth `json:"first_month"`
}

func (m *seasonalTrend) Fit(series domain.ForecastSeries, horizon int) (FittedModel, error) {
	if err := checkSeries(series, 2*m.seasonLength); err != nil {
		return nil, err
	}

	first := series.Points[0].Month

	// Alternate trend and seasonal passes once: the first trend fit absorbs
	// part of the seasonal signal, refitting on the deseasonalised values
	// removes that bias.
	intercept, slope := fitTrend(series, first, nil)
	seasonal := seasonalIndices(series, first, intercept, slope)
	intercept, slope = fitTrend(series, first, seasonal)
	seasonal = seasonalIndices(series, first, intercept, slope)

	last := series.Points[series.Len()-1].Month
	return &SeasonalTrendFit{
		ModelName: m.Name(),
		Intercept: intercept,
		Slope:     slope,
		Seasonal:  seasonal,
		LastMonth: last,
		LastIndex: monthsBetween(first, last),
		First:     first,
	}, nil
}

// fitTrend least-squares fits value against the calendar-month index so
// series gaps keep their distance. A non-nil seasonal map is subtracted
// first.
func fitTrend(series domain.ForecastSeries, first domain.YearMonth, seasonal map[int]float64) (intercept, slope float64) {
	var n, sumX, sumY, sumXY, sumX2 float64
	for _, p := range series.Points {
		x := float64(monthsBetween(first, p.Month))
		y := p.Value - seasonal[int(p.Month.Month)]
		n++
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}
	intercept = (sumY - slope*sumX) / n
	return intercept, slope
}

// seasonalIndices averages the detrended value per calendar month.
func seasonalIndices(series domain.ForecastSeries, first domain.YearMonth, intercept, slope float64) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, p := range series.Points {
		x := float64(monthsBetween(first, p.Month))
		mi := int(p.Month.Month)
		sums[mi] += p.Value - (intercept + slope*x)
		counts[mi]++
	}
	out := make(map[int]float64, len(sums))
	for mi, s := range sums {
		out[mi] = s / float64(counts[mi])
	}
	return out
}

func (f *SeasonalTrendFit) Name() string { return f.ModelName }

func (f *SeasonalTrendFit) Predict(horizon int) domain.ForecastSeries {
	out := domain.ForecastSeries{GroupKey: "forecast"}
	for i, ym := range futureMonths(f.LastMonth, horizon) {
		x := float64(f.LastIndex + i + 1)
		v := f.Intercept + f.Slope*x + f.Seasonal[int(ym.Month)]
		out.Points = append(out.Points, domain.ForecastPoint{Month: ym, Value: v})
	}
	return out
}
