package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ratinglens/internal/domain"
)

// Review corpora arrive from several export formats with inconsistent field
// names. The mapper tries each known alias in order and normalises types, so
// the importer accepts any of them without per-source code.
var reviewFieldAliases = map[string][]string{
	"review_id":  {"review_id", "reviewId", "id", "review.id"},
	"product_id": {"product_id", "productId", "asin", "item_id", "product.id"},
	"category":   {"category", "product_category", "main_category"},
	"timestamp":  {"timestamp", "date", "created_at", "review_date", "reviewTime"},
	"rating":     {"rating", "raw_rating", "overall", "stars", "score", "original_rating"},
	"text":       {"text", "review_text", "reviewText", "body", "content", "review"},
}

// MapReview converts one loosely-typed record into a domain.Review.
// Malformed records come back with ErrMalformedReview wrapped; the importer
// counts them and keeps going.
func MapReview(rec map[string]any) (domain.Review, error) {
	r := domain.Review{
		ReviewID:  pickString(rec, reviewFieldAliases["review_id"]),
		ProductID: pickString(rec, reviewFieldAliases["product_id"]),
		Category:  pickString(rec, reviewFieldAliases["category"]),
		Text:      pickString(rec, reviewFieldAliases["text"]),
	}
	if r.ReviewID == "" {
		return domain.Review{}, fmt.Errorf("%w: no review id field", domain.ErrMalformedReview)
	}
	if r.ProductID == "" {
		return domain.Review{}, fmt.Errorf("%w: no product id field", domain.ErrMalformedReview)
	}
	if r.Category == "" {
		return domain.Review{}, fmt.Errorf("%w: no category field", domain.ErrMalformedReview)
	}

	ts, ok := pickTime(rec, reviewFieldAliases["timestamp"])
	if !ok {
		return domain.Review{}, fmt.Errorf("%w: no usable timestamp", domain.ErrMalformedReview)
	}
	r.Timestamp = ts

	rating, ok := pickFloat(rec, reviewFieldAliases["rating"])
	if !ok {
		return domain.Review{}, fmt.Errorf("%w: no usable rating", domain.ErrMalformedReview)
	}
	r.RawRating = rating
	return r, nil
}

// MapReviews maps a whole export, splitting it into the valid reviews and
// the per-record reasons for everything dropped.
func MapReviews(recs []map[string]any) ([]domain.Review, []domain.SkippedItem) {
	var out []domain.Review
	var dropped []domain.SkippedItem
	for i, rec := range recs {
		r, err := MapReview(rec)
		if err != nil {
			dropped = append(dropped, domain.SkippedItem{
				Key:    fmt.Sprintf("record[%d]", i),
				Reason: err.Error(),
			})
			continue
		}
		out = append(out, r)
	}
	return out, dropped
}

func pickString(rec map[string]any, keys []string) string {
	for _, k := range keys {
		if v, ok := rec[k]; ok {
			switch s := v.(type) {
			case string:
				if t := strings.TrimSpace(s); t != "" {
					return t
				}
			case float64:
				return strconv.FormatFloat(s, 'f', -1, 64)
			}
		}
	}
	return ""
}

func pickFloat(rec map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01 2, 2006", // amazon reviewTime style
}

func pickTime(rec map[string]any, keys []string) (time.Time, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			for _, layout := range timeLayouts {
				if ts, err := time.Parse(layout, strings.TrimSpace(t)); err == nil {
					return ts.UTC(), true
				}
			}
		case float64:
			// unix seconds
			if t > 0 {
				return time.Unix(int64(t), 0).UTC(), true
			}
		}
	}
	return time.Time{}, false
}
