package forecast

import (
	"ratinglens/internal/domain"
)

// autoregressive fits an AR(p) model on the once-differenced series.
// Differencing removes the level so the regression sees a roughly stationary
// signal; forecasts are integrated back onto the original scale.
type autoregressive struct {
	order int
}

func newAutoregressive(order int) *autoregressive {
	return &autoregressive{order: order}
}

func (m *autoregressive) Name() string              { return "ar" }
func (m *autoregressive) SupportsSeasonality() bool { return false }

type ARFit struct {
	ModelName string           `json:"model"`
	Order     int              `json:"order"`
	Coef      []float64        `json:"coef"` // Coef[0] is the constant term
	LastDiffs []float64        `json:"last_diffs"`
	LastValue float64          `json:"last_value"`
	LastMonth domain.YearMonth `json:"last_month"`
}

func (m *autoregressive) Fit(series domain.ForecastSeries, horizon int) (FittedModel, error) {
	// need p+1 regression rows out of the differenced series
	minLen := 2*m.order + 2
	if err := checkSeries(series, minLen); err != nil {
		return nil, err
	}

	vals := series.Values()
	diffs := make([]float64, len(vals)-1)
	for i := 1; i < len(vals); i++ {
		diffs[i-1] = vals[i] - vals[i-1]
	}

	p := m.order
	rows := len(diffs) - p
	// Normal equations for [1, d(t-1)..d(t-p)] -> d(t).
	dim := p + 1
	xtx := make([][]float64, dim)
	xty := make([]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	for t := p; t < len(diffs); t++ {
		row := make([]float64, dim)
		row[0] = 1
		for j := 1; j <= p; j++ {
			row[j] = diffs[t-j]
		}
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * diffs[t]
		}
	}
	// Small ridge term keeps the solve stable on near-collinear lags.
	for i := 1; i < dim; i++ {
		xtx[i][i] += 1e-8 * float64(rows)
	}

	coef, ok := solveSymmetric(xtx, xty)
	if !ok {
		// collinear beyond the ridge guard: treat like a degenerate input
		return nil, domain.ErrDegenerateSeries
	}

	lastDiffs := make([]float64, p)
	for j := 0; j < p; j++ {
		lastDiffs[j] = diffs[len(diffs)-1-j]
	}
	return &ARFit{
		ModelName: m.Name(),
		Order:     p,
		Coef:      coef,
		LastDiffs: lastDiffs,
		LastValue: vals[len(vals)-1],
		LastMonth: series.Points[series.Len()-1].Month,
	}, nil
}

func (f *ARFit) Name() string { return f.ModelName }

func (f *ARFit) Predict(horizon int) domain.ForecastSeries {
	diffs := append([]float64(nil), f.LastDiffs...) // diffs[0] is most recent
	level := f.LastValue

	out := domain.ForecastSeries{GroupKey: "forecast"}
	for _, ym := range futureMonths(f.LastMonth, horizon) {
		next := f.Coef[0]
		for j := 0; j < f.Order; j++ {
			next += f.Coef[j+1] * diffs[j]
		}
		level += next
		copy(diffs[1:], diffs)
		diffs[0] = next
		out.Points = append(out.Points, domain.ForecastPoint{Month: ym, Value: level})
	}
	return out
}

// solveSymmetric solves Ax=b by Gaussian elimination with partial pivoting.
// Fine for the tiny systems the AR fit produces.
func solveSymmetric(a [][]float64, b []float64) ([]float64, bool) {
	n := len(a)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(m[r][col]) > abs(m[pivot][col]) {
				pivot = r
			}
		}
		if abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n] / m[i][i]
	}
	return x, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
