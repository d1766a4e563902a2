package domain

import "time"

// YearMonth identifies a calendar month in UTC.
type YearMonth struct {
	Year  int
	Month time.Month
}

func YearMonthOf(t time.Time) YearMonth {
	u := t.UTC()
	return YearMonth{Year: u.Year(), Month: u.Month()}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// Next returns the following calendar month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// String renders "2024-03".
func (ym YearMonth) String() string {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ParseYearMonth inverts String.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, err
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// GroupBy selects the aggregation key for monthly rollups.
type GroupBy string

const (
	GroupByProduct  GroupBy = "product"
	GroupByCategory GroupBy = "category"
	// GroupByCorpus holds the single corpus-wide series.
	GroupByCorpus GroupBy = "corpus"
)

// MonthlyAggregate is one (group key, month) rollup of corrected reviews.
// Months with zero reviews are omitted, not zero-filled; forecasting
// strategies handle the gaps themselves.
type MonthlyAggregate struct {
	GroupBy             GroupBy
	GroupKey            string
	Month               YearMonth
	MeanRawRating       float64
	MeanCorrectedRating float64
	ReviewCount         int
	OverratedRatio      float64
	ForecastGap         float64 // mean raw minus mean corrected
	HighRisk            bool
}

// ForecastPoint is one step of a ForecastSeries.
type ForecastPoint struct {
	Month YearMonth
	Value float64
}

// ForecastSeries is the ordered monthly series shared by every forecasting
// strategy, both as training input and prediction output.
type ForecastSeries struct {
	GroupKey string
	Points   []ForecastPoint
}

// Values returns the series values in order.
func (s ForecastSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Len returns the number of points.
func (s ForecastSeries) Len() int { return len(s.Points) }

// EvaluationResult is one strategy's held-out accuracy. Non-evaluable
// strategies carry a skip reason and are excluded from ranking but never
// dropped from the result set.
type EvaluationResult struct {
	ModelName  string
	MAE        float64
	RMSE       float64
	Evaluable  bool
	SkipReason string
}

// SkippedItem records one review or group excluded from a run.
type SkippedItem struct {
	Key    string
	Reason string
}

// RunManifest accompanies every pipeline run; silent partial failure is
// disallowed, so everything skipped is listed here with a reason.
type RunManifest struct {
	TotalReviews    int
	DroppedReviews  []SkippedItem
	SkippedModels   []SkippedItem
	SkippedGroups   []SkippedItem
	SelectedModel   string
	EvaluatedModels int
}

// Overview carries the corpus-level KPIs served to the dashboard.
type Overview struct {
	TotalReviews       int
	AvgRawRating       float64
	AvgCorrectedRating float64
	AvgRatingGap       float64
	OverratedPercent   float64
}
