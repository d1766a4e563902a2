package app_test

import (
	"errors"
	"testing"
	"time"

	"ratinglens/internal/app"
	"ratinglens/internal/domain"
)

func TestMapReview_CanonicalFields(t *testing.T) {
	r, err := app.MapReview(map[string]any{
		"review_id":  "r1",
		"product_id": "p1",
		"category":   "electronics",
		"timestamp":  "2024-03-15T10:00:00Z",
		"rating":     4.0,
		"text":       "solid product",
	})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if r.ReviewID != "r1" || r.ProductID != "p1" || r.RawRating != 4.0 {
		t.Fatalf("review = %+v", r)
	}
	if r.Timestamp.Month() != time.March {
		t.Fatalf("timestamp = %v", r.Timestamp)
	}
}

func TestMapReview_AmazonExportAliases(t *testing.T) {
	r, err := app.MapReview(map[string]any{
		"id":            "B00R1",
		"asin":          "B0001",
		"main_category": "books",
		"reviewTime":    "04 3, 2018",
		"overall":       float64(5),
		"reviewText":    "couldn't put it down",
	})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if r.ProductID != "B0001" || r.Category != "books" || r.RawRating != 5 {
		t.Fatalf("review = %+v", r)
	}
	if r.Timestamp.Year() != 2018 || r.Timestamp.Month() != time.April {
		t.Fatalf("timestamp = %v", r.Timestamp)
	}
}

func TestMapReview_UnixSecondsAndStringRating(t *testing.T) {
	r, err := app.MapReview(map[string]any{
		"review_id":  "r2",
		"product_id": "p2",
		"category":   "c",
		"timestamp":  float64(1700000000),
		"rating":     " 3.5 ",
	})
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if r.Timestamp.Unix() != 1700000000 || r.RawRating != 3.5 {
		t.Fatalf("review = %+v", r)
	}
	if r.Text != "" {
		t.Fatalf("text should default empty, got %q", r.Text)
	}
}

func TestMapReview_Malformed(t *testing.T) {
	cases := []struct {
		name string
		rec  map[string]any
	}{
		{"missing id", map[string]any{"product_id": "p", "category": "c", "timestamp": "2024-01-01", "rating": 4.0}},
		{"missing product", map[string]any{"review_id": "r", "category": "c", "timestamp": "2024-01-01", "rating": 4.0}},
		{"unparseable time", map[string]any{"review_id": "r", "product_id": "p", "category": "c", "timestamp": "soon", "rating": 4.0}},
		{"no rating", map[string]any{"review_id": "r", "product_id": "p", "category": "c", "timestamp": "2024-01-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := app.MapReview(tc.rec); !errors.Is(err, domain.ErrMalformedReview) {
				t.Fatalf("err = %v, want ErrMalformedReview", err)
			}
		})
	}
}

func TestMapReviews_SplitsDropped(t *testing.T) {
	recs := []map[string]any{
		{"review_id": "r1", "product_id": "p1", "category": "c", "timestamp": "2024-01-01", "rating": 4.0},
		{"review_id": "", "product_id": "p1", "category": "c", "timestamp": "2024-01-01", "rating": 4.0},
		{"review_id": "r3", "product_id": "p1", "category": "c", "timestamp": "2024-01-02", "rating": "5"},
	}
	out, dropped := app.MapReviews(recs)
	if len(out) != 2 || len(dropped) != 1 {
		t.Fatalf("out=%d dropped=%d", len(out), len(dropped))
	}
	if dropped[0].Key != "record[1]" {
		t.Fatalf("dropped key = %q", dropped[0].Key)
	}
}
