package forecast

import (
	"sort"

	"ratinglens/internal/domain"
)

// boostedLAD is the secondary boosted-trees variant: same lag feature
// contract as boosted_stumps, but each round fits the sign of the residuals
// and the leaves take median residuals. The absolute-error objective keeps
// the occasional aberrant month from dragging the fit.
type boostedLAD struct {
	rounds int
}

func newBoostedLAD(rounds int) *boostedLAD { return &boostedLAD{rounds: rounds} }

func (m *boostedLAD) Name() string              { return "boosted_lad" }
func (m *boostedLAD) SupportsSeasonality() bool { return false }

func (m *boostedLAD) Fit(series domain.ForecastSeries, horizon int) (FittedModel, error) {
	if err := checkSeries(series, minBoostHistory); err != nil {
		return nil, err
	}
	vals := series.Values()
	xs, ys := buildFeatures(vals)

	n := len(ys)
	base := median(append([]float64(nil), ys...))

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = base
	}
	resids := make([]float64, n)
	signs := make([]float64, n)

	stumps := make([]Stump, 0, m.rounds)
	for r := 0; r < m.rounds; r++ {
		for i := range resids {
			resids[i] = ys[i] - preds[i]
			signs[i] = sign(resids[i])
		}
		split, ok := fitStumpSSE(xs, signs)
		if !ok {
			break
		}
		st := medianLeafStump(split, xs, resids)
		stumps = append(stumps, st)
		for i := range preds {
			preds[i] += boostLearningRate * st.eval(xs[i])
		}
	}

	return &BoostFit{
		ModelName:    m.Name(),
		Base:         base,
		LearningRate: boostLearningRate,
		Stumps:       stumps,
		History:      append([]float64(nil), vals...),
		LastMonth:    series.Points[series.Len()-1].Month,
	}, nil
}

// medianLeafStump keeps the split found on the residual signs but replaces
// the leaf values with median residuals of each side.
func medianLeafStump(split Stump, xs [][]float64, resids []float64) Stump {
	var left, right []float64
	for i, x := range xs {
		if x[split.Feature] <= split.Threshold {
			left = append(left, resids[i])
		} else {
			right = append(right, resids[i])
		}
	}
	if len(left) > 0 {
		split.Left = median(left)
	} else {
		split.Left = 0
	}
	if len(right) > 0 {
		split.Right = median(right)
	} else {
		split.Right = 0
	}
	return split
}

// median mutates its argument by sorting.
func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
