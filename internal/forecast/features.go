package forecast

// Lagged supervised view of a series: the boosted variants treat forecasting
// as regression over lag features plus a short rolling mean. This feature
// step is explicit and shared by every boosted strategy.

var defaultLags = []int{1, 3, 12}

const rollingWindow = 3

// minBoostHistory is the shortest series the lag features can be built from:
// the longest lag plus enough rows to split on.
const minBoostHistory = 12 + 4

// featureRow builds the feature vector for position t of vals: one entry per
// lag, then the rolling mean of the preceding window. Caller guarantees
// t >= maxLag and t >= rollingWindow.
func featureRow(vals []float64, t int) []float64 {
	row := make([]float64, 0, len(defaultLags)+1)
	for _, lag := range defaultLags {
		row = append(row, vals[t-lag])
	}
	var sum float64
	for i := t - rollingWindow; i < t; i++ {
		sum += vals[i]
	}
	row = append(row, sum/float64(rollingWindow))
	return row
}

// buildFeatures turns vals into (X, y) training pairs starting at the first
// position where every lag is available.
func buildFeatures(vals []float64) (xs [][]float64, ys []float64) {
	start := defaultLags[len(defaultLags)-1]
	if rollingWindow > start {
		start = rollingWindow
	}
	for t := start; t < len(vals); t++ {
		xs = append(xs, featureRow(vals, t))
		ys = append(ys, vals[t])
	}
	return xs, ys
}
