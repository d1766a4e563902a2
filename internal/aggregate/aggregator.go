// Package aggregate rolls corrected reviews up to monthly series per product
// or category and classifies group/month risk.
package aggregate

import (
	"sort"

	"ratinglens/internal/domain"
)

// RiskOptions gate the high-risk classification.
type RiskOptions struct {
	// RatioThreshold is the overrated ratio above which a group/month is
	// risky. Default 0.30.
	RatioThreshold float64
	// MinSupport is the review count a group/month must exceed before it
	// can be flagged; low-volume months are noise. Default 5.
	MinSupport int
}

func DefaultRiskOptions() RiskOptions {
	return RiskOptions{RatioThreshold: 0.30, MinSupport: 5}
}

type bucket struct {
	rawSum       float64
	correctedSum float64
	count        int
	overrated    int
}

// Monthly groups corrected reviews by (group key, calendar month) and
// computes the per-bucket means, counts and overrated ratio. Pure function
// of its inputs; rerunning on the same set yields identical aggregates.
// Months with no reviews are simply absent.
func Monthly(rs []domain.CorrectedReview, groupBy domain.GroupBy, opts RiskOptions) []domain.MonthlyAggregate {
	type key struct {
		group string
		ym    domain.YearMonth
	}
	buckets := make(map[key]*bucket)

	for _, r := range rs {
		group := r.ProductID
		if groupBy == domain.GroupByCategory {
			group = r.Category
		}
		k := key{group: group, ym: domain.YearMonthOf(r.Timestamp)}
		b := buckets[k]
		if b == nil {
			b = &bucket{}
			buckets[k] = b
		}
		b.rawSum += r.RawRating
		b.correctedSum += r.CorrectedRating
		b.count++
		if r.IsOverrated {
			b.overrated++
		}
	}

	out := make([]domain.MonthlyAggregate, 0, len(buckets))
	for k, b := range buckets {
		meanRaw := b.rawSum / float64(b.count)
		meanCorrected := b.correctedSum / float64(b.count)
		ratio := float64(b.overrated) / float64(b.count)
		out = append(out, domain.MonthlyAggregate{
			GroupBy:             groupBy,
			GroupKey:            k.group,
			Month:               k.ym,
			MeanRawRating:       meanRaw,
			MeanCorrectedRating: meanCorrected,
			ReviewCount:         b.count,
			OverratedRatio:      ratio,
			ForecastGap:         meanRaw - meanCorrected,
			HighRisk:            ratio > opts.RatioThreshold && b.count > opts.MinSupport,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupKey != out[j].GroupKey {
			return out[i].GroupKey < out[j].GroupKey
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// Series extracts the ordered monthly series of one aggregate field for a
// single group. Aggregates for other groups are ignored.
func Series(as []domain.MonthlyAggregate, groupKey string, value func(domain.MonthlyAggregate) float64) domain.ForecastSeries {
	s := domain.ForecastSeries{GroupKey: groupKey}
	for _, a := range as {
		if a.GroupKey != groupKey {
			continue
		}
		s.Points = append(s.Points, domain.ForecastPoint{Month: a.Month, Value: value(a)})
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Month.Before(s.Points[j].Month) })
	return s
}

// MeanCorrected is the standard forecast target.
func MeanCorrected(a domain.MonthlyAggregate) float64 { return a.MeanCorrectedRating }

// CorpusSeries builds the corpus-wide monthly corrected series across all
// reviews regardless of group. This is the series the model bank is
// evaluated on.
func CorpusSeries(rs []domain.CorrectedReview) domain.ForecastSeries {
	type acc struct {
		sum   float64
		count int
	}
	months := make(map[domain.YearMonth]*acc)
	for _, r := range rs {
		ym := domain.YearMonthOf(r.Timestamp)
		a := months[ym]
		if a == nil {
			a = &acc{}
			months[ym] = a
		}
		a.sum += r.CorrectedRating
		a.count++
	}

	s := domain.ForecastSeries{GroupKey: "corpus"}
	for ym, a := range months {
		s.Points = append(s.Points, domain.ForecastPoint{Month: ym, Value: a.sum / float64(a.count)})
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Month.Before(s.Points[j].Month) })
	return s
}

// Overview computes the corpus KPIs served on the dashboard landing page.
func Overview(rs []domain.CorrectedReview) domain.Overview {
	if len(rs) == 0 {
		return domain.Overview{}
	}
	var rawSum, correctedSum float64
	var overrated int
	for _, r := range rs {
		rawSum += r.RawRating
		correctedSum += r.CorrectedRating
		if r.IsOverrated {
			overrated++
		}
	}
	n := float64(len(rs))
	return domain.Overview{
		TotalReviews:       len(rs),
		AvgRawRating:       rawSum / n,
		AvgCorrectedRating: correctedSum / n,
		AvgRatingGap:       (rawSum - correctedSum) / n,
		OverratedPercent:   float64(overrated) / n * 100,
	}
}
