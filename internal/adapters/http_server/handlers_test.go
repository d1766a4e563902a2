package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpserver "ratinglens/internal/adapters/http_server"
	"ratinglens/internal/app"
	"ratinglens/internal/domain"
)

// stubRepo serves canned read-path data; write paths are never reached
// through the API.
type stubRepo struct {
	corrected  []domain.CorrectedReview
	aggregates []domain.MonthlyAggregate
	evals      []domain.EvaluationResult
	forecast   domain.ForecastSeries
	overview   domain.Overview
}

func (s *stubRepo) InsertReviews(context.Context, []domain.Review) error              { return nil }
func (s *stubRepo) ReplaceCorrectedReviews(context.Context, []domain.CorrectedReview) error {
	return nil
}
func (s *stubRepo) ReplaceAggregates(context.Context, []domain.MonthlyAggregate) error { return nil }
func (s *stubRepo) ReplaceEvaluations(context.Context, []domain.EvaluationResult) error {
	return nil
}
func (s *stubRepo) ReplaceForecasts(context.Context, domain.GroupBy, []domain.ForecastSeries) error {
	return nil
}
func (s *stubRepo) SaveModelArtifact(context.Context, string, []byte) error { return nil }
func (s *stubRepo) ListReviews(context.Context) ([]domain.Review, error)    { return nil, nil }
func (s *stubRepo) ListCorrectedReviews(_ context.Context, productID string, _ domain.PageQuery) ([]domain.CorrectedReview, error) {
	var out []domain.CorrectedReview
	for _, r := range s.corrected {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (s *stubRepo) ListAggregates(_ context.Context, gb domain.GroupBy, key string) ([]domain.MonthlyAggregate, error) {
	var out []domain.MonthlyAggregate
	for _, a := range s.aggregates {
		if a.GroupBy == gb && a.GroupKey == key {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}
func (s *stubRepo) ListEvaluations(context.Context) ([]domain.EvaluationResult, error) {
	return s.evals, nil
}
func (s *stubRepo) GetForecast(_ context.Context, gb domain.GroupBy, key string) (domain.ForecastSeries, error) {
	if s.forecast.GroupKey == key {
		return s.forecast, nil
	}
	return domain.ForecastSeries{}, domain.ErrNotFound
}
func (s *stubRepo) GetOverview(context.Context) (domain.Overview, error) { return s.overview, nil }
func (s *stubRepo) LoadModelArtifact(context.Context, string) ([]byte, error) {
	return nil, domain.ErrNotFound
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any, int) error    { return nil }
func (nopCache) Del(context.Context, string) error              { return nil }
func (nopCache) InvalidatePrefix(context.Context, string) error { return nil }

func newTestServer(repo *stubRepo) *httptest.Server {
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: app.NewQueryService(repo, nopCache{}, time.Minute)})
	return httptest.NewServer(srv.Mux())
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&stubRepo{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestProductAggregatesAndETag(t *testing.T) {
	repo := &stubRepo{aggregates: []domain.MonthlyAggregate{{
		GroupBy:             domain.GroupByProduct,
		GroupKey:            "p1",
		Month:               domain.YearMonth{Year: 2024, Month: time.June},
		MeanRawRating:       4.5,
		MeanCorrectedRating: 3.8,
		ReviewCount:         12,
		OverratedRatio:      0.4,
		HighRisk:            true,
	}}}
	ts := newTestServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/products/p1/aggregates")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	var aggs []domain.MonthlyAggregate
	if err := json.NewDecoder(resp.Body).Decode(&aggs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(aggs) != 1 || !aggs[0].HighRisk {
		t.Fatalf("aggs = %+v", aggs)
	}

	// conditional revalidation short-circuits
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/products/p1/aggregates", nil)
	req.Header.Set("If-None-Match", etag)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("status = %d, want 304", resp2.StatusCode)
	}
}

func TestAggregatesNotFoundProblem(t *testing.T) {
	ts := newTestServer(&stubRepo{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/categories/ghost/aggregates")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestReviewsLimitValidation(t *testing.T) {
	ts := newTestServer(&stubRepo{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/products/p1/reviews?limit=0")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestModelRankingResponse(t *testing.T) {
	repo := &stubRepo{evals: []domain.EvaluationResult{
		{ModelName: "bagged_ensemble", MAE: 0.10, RMSE: 0.13, Evaluable: true},
		{ModelName: "ar", Evaluable: false, SkipReason: "insufficient history"},
	}}
	ts := newTestServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/models/ranking")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Selected string                    `json:"selected_model"`
		Models   []domain.EvaluationResult `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Selected != "bagged_ensemble" || len(body.Models) != 2 {
		t.Fatalf("body = %+v", body)
	}
}

func TestCorpusForecast(t *testing.T) {
	repo := &stubRepo{forecast: domain.ForecastSeries{
		GroupKey: "corpus",
		Points: []domain.ForecastPoint{
			{Month: domain.YearMonth{Year: 2025, Month: time.January}, Value: 3.9},
		},
	}}
	ts := newTestServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/forecast")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var fs domain.ForecastSeries
	if err := json.NewDecoder(resp.Body).Decode(&fs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if fs.Len() != 1 || fs.Points[0].Value != 3.9 {
		t.Fatalf("forecast = %+v", fs)
	}
}
