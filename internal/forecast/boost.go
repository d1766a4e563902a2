package forecast

import (
	"sort"

	"ratinglens/internal/domain"
)

// Stump is a one-split regression tree; boosting many of them fits the
// low-volume monthly series without the variance of deep trees.
type Stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
}

func (s Stump) eval(x []float64) float64 {
	if x[s.Feature] <= s.Threshold {
		return s.Left
	}
	return s.Right
}

const boostLearningRate = 0.1

// boostedStumps is plain gradient boosting with squared loss over the lagged
// feature view of the series.
type boostedStumps struct {
	rounds int
}

func newBoostedStumps(rounds int) *boostedStumps { return &boostedStumps{rounds: rounds} }

func (m *boostedStumps) Name() string              { return "boosted_stumps" }
func (m *boostedStumps) SupportsSeasonality() bool { return false }

// BoostFit is the fitted state of a single boosted-stump model. History
// keeps the tail of the training series so lag features can roll forward
// during prediction.
type BoostFit struct {
	ModelName    string           `json:"model"`
	Base         float64          `json:"base"`
	LearningRate float64          `json:"learning_rate"`
	Stumps       []Stump          `json:"stumps"`
	History      []float64        `json:"history"`
	LastMonth    domain.YearMonth `json:"last_month"`
}

func (m *boostedStumps) Fit(series domain.ForecastSeries, horizon int) (FittedModel, error) {
	if err := checkSeries(series, minBoostHistory); err != nil {
		return nil, err
	}
	vals := series.Values()
	xs, ys := buildFeatures(vals)

	base, stumps := fitBoostSquared(xs, ys, m.rounds, boostLearningRate)
	return &BoostFit{
		ModelName:    m.Name(),
		Base:         base,
		LearningRate: boostLearningRate,
		Stumps:       stumps,
		History:      append([]float64(nil), vals...),
		LastMonth:    series.Points[series.Len()-1].Month,
	}, nil
}

func (f *BoostFit) Name() string { return f.ModelName }

func (f *BoostFit) score(x []float64) float64 {
	v := f.Base
	for _, s := range f.Stumps {
		v += f.LearningRate * s.eval(x)
	}
	return v
}

func (f *BoostFit) Predict(horizon int) domain.ForecastSeries {
	vals := append([]float64(nil), f.History...)
	out := domain.ForecastSeries{GroupKey: "forecast"}
	for _, ym := range futureMonths(f.LastMonth, horizon) {
		pred := f.score(featureRow(vals, len(vals)))
		vals = append(vals, pred)
		out.Points = append(out.Points, domain.ForecastPoint{Month: ym, Value: pred})
	}
	return out
}

// fitBoostSquared runs the boosting loop: start at the mean, repeatedly fit
// a stump to the residuals and step towards it.
func fitBoostSquared(xs [][]float64, ys []float64, rounds int, lr float64) (float64, []Stump) {
	n := len(ys)
	base := mean(ys)

	preds := make([]float64, n)
	for i := range preds {
		preds[i] = base
	}
	resids := make([]float64, n)

	stumps := make([]Stump, 0, rounds)
	for r := 0; r < rounds; r++ {
		for i := range resids {
			resids[i] = ys[i] - preds[i]
		}
		st, ok := fitStumpSSE(xs, resids)
		if !ok {
			break
		}
		stumps = append(stumps, st)
		for i := range preds {
			preds[i] += lr * st.eval(xs[i])
		}
	}
	return base, stumps
}

// fitStumpSSE finds the (feature, threshold) split minimizing squared error
// of the two leaf means against target.
func fitStumpSSE(xs [][]float64, target []float64) (Stump, bool) {
	n := len(xs)
	if n < 2 {
		return Stump{}, false
	}
	nf := len(xs[0])

	best := Stump{}
	bestErr := 0.0
	found := false

	idx := make([]int, n)
	for f := 0; f < nf; f++ {
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return xs[idx[a]][f] < xs[idx[b]][f] })

		var totalSum float64
		for _, t := range target {
			totalSum += t
		}

		leftSum := 0.0
		for cut := 1; cut < n; cut++ {
			leftSum += target[idx[cut-1]]
			// no valid threshold between equal feature values
			if xs[idx[cut-1]][f] == xs[idx[cut]][f] {
				continue
			}
			leftMean := leftSum / float64(cut)
			rightMean := (totalSum - leftSum) / float64(n-cut)

			sse := 0.0
			for i := 0; i < cut; i++ {
				d := target[idx[i]] - leftMean
				sse += d * d
			}
			for i := cut; i < n; i++ {
				d := target[idx[i]] - rightMean
				sse += d * d
			}
			if !found || sse < bestErr {
				found = true
				bestErr = sse
				best = Stump{
					Feature:   f,
					Threshold: (xs[idx[cut-1]][f] + xs[idx[cut]][f]) / 2,
					Left:      leftMean,
					Right:     rightMean,
				}
			}
		}
	}
	return best, found
}

func mean(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s / float64(len(vs))
}
