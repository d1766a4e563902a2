package forecast

import (
	"math/rand"

	"ratinglens/internal/domain"
)

// baggedEnsemble trains N independent boosted-stump members on bootstrap
// resamples of the training rows and predicts by averaging. Bag members own
// their fitted state outright; nothing is shared during fit, so the averaging
// is the only coupling. This is the production default: bagging soaks up the
// variance of noisy, low-volume monthly aggregates.
type baggedEnsemble struct {
	inner *boostedStumps
	bags  int
}

func newBaggedEnsemble(inner *boostedStumps, bags int) *baggedEnsemble {
	return &baggedEnsemble{inner: inner, bags: bags}
}

func (m *baggedEnsemble) Name() string              { return "bagged_ensemble" }
func (m *baggedEnsemble) SupportsSeasonality() bool { return false }

// BagMember is one fitted bootstrap member.
type BagMember struct {
	Base   float64 `json:"base"`
	Stumps []Stump `json:"stumps"`
}

// BaggedFit averages its members step by step, feeding the averaged value
// back into the shared rolling history so every member sees the same lags.
type BaggedFit struct {
	ModelName    string           `json:"model"`
	LearningRate float64          `json:"learning_rate"`
	Members      []BagMember      `json:"members"`
	History      []float64        `json:"history"`
	LastMonth    domain.YearMonth `json:"last_month"`
}

func (m *baggedEnsemble) Fit(series domain.ForecastSeries, horizon int) (FittedModel, error) {
	if err := checkSeries(series, minBoostHistory); err != nil {
		return nil, err
	}
	vals := series.Values()
	xs, ys := buildFeatures(vals)
	n := len(ys)

	members := make([]BagMember, m.bags)
	for b := 0; b < m.bags; b++ {
		// fixed per-member seed keeps ranking runs reproducible
		rng := rand.New(rand.NewSource(int64(b) + 1))
		bx := make([][]float64, n)
		by := make([]float64, n)
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i] = xs[j]
			by[i] = ys[j]
		}
		base, stumps := fitBoostSquared(bx, by, m.inner.rounds, boostLearningRate)
		members[b] = BagMember{Base: base, Stumps: stumps}
	}

	return &BaggedFit{
		ModelName:    m.Name(),
		LearningRate: boostLearningRate,
		Members:      members,
		History:      append([]float64(nil), vals...),
		LastMonth:    series.Points[series.Len()-1].Month,
	}, nil
}

func (f *BaggedFit) Name() string { return f.ModelName }

func (f *BaggedFit) Predict(horizon int) domain.ForecastSeries {
	vals := append([]float64(nil), f.History...)
	out := domain.ForecastSeries{GroupKey: "forecast"}
	for _, ym := range futureMonths(f.LastMonth, horizon) {
		x := featureRow(vals, len(vals))
		var sum float64
		for _, mem := range f.Members {
			v := mem.Base
			for _, s := range mem.Stumps {
				v += f.LearningRate * s.eval(x)
			}
			sum += v
		}
		pred := sum / float64(len(f.Members))
		vals = append(vals, pred)
		out.Points = append(out.Points, domain.ForecastPoint{Month: ym, Value: pred})
	}
	return out
}
