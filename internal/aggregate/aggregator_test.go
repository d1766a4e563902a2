package aggregate_test

import (
	"math"
	"reflect"
	"testing"
	"time"

	"ratinglens/internal/aggregate"
	"ratinglens/internal/domain"
)

func review(product, category string, ts time.Time, raw, corrected float64, overrated bool) domain.CorrectedReview {
	return domain.CorrectedReview{
		ScoredReview: domain.ScoredReview{
			Review: domain.Review{
				ReviewID:  product + ts.Format("20060102150405.000"),
				ProductID: product,
				Category:  category,
				Timestamp: ts,
				RawRating: raw,
			},
		},
		CorrectedRating: corrected,
		IsOverrated:     overrated,
	}
}

func month(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 12, 0, 0, 0, time.UTC)
}

func TestMonthly_MeansAndRatio(t *testing.T) {
	rs := []domain.CorrectedReview{
		review("p1", "tech", month(2024, 1, 3), 5, 3, true),
		review("p1", "tech", month(2024, 1, 20), 4, 4, false),
		review("p1", "tech", month(2024, 2, 1), 3, 3, false),
		review("p2", "home", month(2024, 1, 5), 2, 2, false),
	}
	out := aggregate.Monthly(rs, domain.GroupByProduct, aggregate.DefaultRiskOptions())
	if len(out) != 3 {
		t.Fatalf("want 3 buckets, got %d", len(out))
	}

	jan := out[0]
	if jan.GroupKey != "p1" || jan.Month.Month != time.January {
		t.Fatalf("unexpected first bucket: %+v", jan)
	}
	if math.Abs(jan.MeanRawRating-4.5) > 1e-9 || math.Abs(jan.MeanCorrectedRating-3.5) > 1e-9 {
		t.Fatalf("means wrong: %+v", jan)
	}
	if jan.ReviewCount != 2 || math.Abs(jan.OverratedRatio-0.5) > 1e-9 {
		t.Fatalf("count/ratio wrong: %+v", jan)
	}
	if math.Abs(jan.ForecastGap-1.0) > 1e-9 {
		t.Fatalf("forecast gap wrong: %+v", jan)
	}
}

func TestMonthly_CountsSumToCorpus(t *testing.T) {
	var rs []domain.CorrectedReview
	ts := month(2023, 1, 1)
	for i := 0; i < 57; i++ {
		p := "p1"
		if i%3 == 0 {
			p = "p2"
		}
		rs = append(rs, review(p, "tech", ts.AddDate(0, i%11, i%27), 4, 4, false))
	}
	out := aggregate.Monthly(rs, domain.GroupByProduct, aggregate.DefaultRiskOptions())
	total := 0
	for _, a := range out {
		total += a.ReviewCount
	}
	if total != len(rs) {
		t.Fatalf("bucket counts sum to %d, want %d", total, len(rs))
	}
}

func TestMonthly_Idempotent(t *testing.T) {
	rs := []domain.CorrectedReview{
		review("p1", "tech", month(2024, 1, 3), 5, 3, true),
		review("p2", "home", month(2024, 3, 5), 2, 2, false),
		review("p1", "tech", month(2024, 2, 1), 3, 3.2, false),
	}
	first := aggregate.Monthly(rs, domain.GroupByCategory, aggregate.DefaultRiskOptions())
	second := aggregate.Monthly(rs, domain.GroupByCategory, aggregate.DefaultRiskOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestMonthly_RiskNeedsMinSupport(t *testing.T) {
	// three overrated reviews: ratio 1.0 but below min support, not risky
	rs := []domain.CorrectedReview{
		review("p1", "tech", month(2024, 1, 3), 5, 3, true),
		review("p1", "tech", month(2024, 1, 4), 5, 3, true),
		review("p1", "tech", month(2024, 1, 5), 5, 3, true),
	}
	out := aggregate.Monthly(rs, domain.GroupByProduct, aggregate.DefaultRiskOptions())
	if len(out) != 1 || out[0].HighRisk {
		t.Fatalf("low-support month must not be high risk: %+v", out)
	}

	// six reviews, four overrated: ratio and support both clear the gate
	for i := 6; i < 9; i++ {
		rs = append(rs, review("p1", "tech", month(2024, 1, i), 4, 3.9, i == 6))
	}
	out = aggregate.Monthly(rs, domain.GroupByProduct, aggregate.DefaultRiskOptions())
	if len(out) != 1 || !out[0].HighRisk {
		t.Fatalf("expected high risk: %+v", out)
	}
}

func TestCorpusSeries_OrderedAndSparse(t *testing.T) {
	rs := []domain.CorrectedReview{
		review("p1", "tech", month(2024, 3, 3), 5, 4, false),
		review("p2", "home", month(2024, 1, 4), 4, 4, false),
		// February absent on purpose
		review("p1", "tech", month(2024, 1, 5), 2, 2, false),
	}
	s := aggregate.CorpusSeries(rs)
	if s.Len() != 2 {
		t.Fatalf("want 2 sparse points, got %d", s.Len())
	}
	if !s.Points[0].Month.Before(s.Points[1].Month) {
		t.Fatalf("series not ordered: %+v", s.Points)
	}
	if math.Abs(s.Points[0].Value-3.0) > 1e-9 {
		t.Fatalf("january mean wrong: %v", s.Points[0].Value)
	}
}

func TestOverview(t *testing.T) {
	rs := []domain.CorrectedReview{
		review("p1", "tech", month(2024, 1, 3), 5, 3, true),
		review("p2", "home", month(2024, 1, 4), 3, 3, false),
	}
	o := aggregate.Overview(rs)
	if o.TotalReviews != 2 {
		t.Fatalf("total = %d", o.TotalReviews)
	}
	if math.Abs(o.AvgRawRating-4.0) > 1e-9 || math.Abs(o.AvgCorrectedRating-3.0) > 1e-9 {
		t.Fatalf("averages wrong: %+v", o)
	}
	if math.Abs(o.AvgRatingGap-1.0) > 1e-9 || math.Abs(o.OverratedPercent-50.0) > 1e-9 {
		t.Fatalf("gap/percent wrong: %+v", o)
	}
}
