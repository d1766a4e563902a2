package evaluate_test

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"ratinglens/internal/domain"
	"ratinglens/internal/evaluate"
	"ratinglens/internal/forecast"
)

func series(n int) domain.ForecastSeries {
	s := domain.ForecastSeries{GroupKey: "corpus"}
	ym := domain.YearMonth{Year: 2021, Month: time.January}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, domain.ForecastPoint{
			Month: ym,
			Value: 3.5 + 0.01*float64(i) + 0.2*math.Sin(2*math.Pi*float64(i)/12),
		})
		ym = ym.Next()
	}
	return s
}

func TestSplit(t *testing.T) {
	s := series(40)
	train, test := evaluate.Split(s, 6)
	if train.Len() != 34 || test.Len() != 6 {
		t.Fatalf("split %d/%d, want 34/6", train.Len(), test.Len())
	}
	// holdout capped at a fifth
	train, test = evaluate.Split(s, 20)
	if test.Len() != 8 {
		t.Fatalf("holdout not capped: %d", test.Len())
	}
}

func TestMetrics(t *testing.T) {
	pred := []float64{1, 2, 3}
	actual := []float64{1, 2, 5}
	if got := evaluate.MAE(pred, actual); math.Abs(got-2.0/3) > 1e-12 {
		t.Fatalf("MAE = %v", got)
	}
	if got := evaluate.RMSE(pred, actual); math.Abs(got-math.Sqrt(4.0/3)) > 1e-12 {
		t.Fatalf("RMSE = %v", got)
	}
}

func TestRank_RMSEWinsRegardlessOfOrder(t *testing.T) {
	a := domain.EvaluationResult{ModelName: "bagged_ensemble", MAE: 0.0015, RMSE: 0.0026, Evaluable: true}
	b := domain.EvaluationResult{ModelName: "seasonal_trend", MAE: 0.131, RMSE: 0.171, Evaluable: true}

	for _, in := range [][]domain.EvaluationResult{{a, b}, {b, a}} {
		ranked := evaluate.Rank(in)
		if ranked[0].ModelName != "bagged_ensemble" {
			t.Fatalf("ranking order-dependent: %+v", ranked)
		}
	}
}

func TestRank_TieBreaks(t *testing.T) {
	rs := []domain.EvaluationResult{
		{ModelName: "b", MAE: 0.2, RMSE: 0.5, Evaluable: true},
		{ModelName: "a", MAE: 0.2, RMSE: 0.5, Evaluable: true},
		{ModelName: "c", MAE: 0.1, RMSE: 0.5, Evaluable: true},
		{ModelName: "skipped", SkipReason: "insufficient history"},
	}
	ranked := evaluate.Rank(rs)
	want := []string{"c", "a", "b", "skipped"}
	for i, r := range ranked {
		if r.ModelName != want[i] {
			t.Fatalf("rank %d = %s, want %s (%+v)", i, r.ModelName, want[i], ranked)
		}
	}
	if evaluate.Select(ranked) != "c" {
		t.Fatalf("selected %s", evaluate.Select(ranked))
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	rs := []domain.EvaluationResult{
		{ModelName: "b", RMSE: 0.5, Evaluable: true},
		{ModelName: "a", RMSE: 0.1, Evaluable: true},
	}
	snapshot := append([]domain.EvaluationResult(nil), rs...)
	evaluate.Rank(rs)
	if !reflect.DeepEqual(rs, snapshot) {
		t.Fatal("Rank mutated its input")
	}
}

func TestRun_SkipsFailuresWithoutAborting(t *testing.T) {
	s := series(36)
	train, test := evaluate.Split(s, 4)

	opts := forecast.DefaultBankOptions()
	opts.BagSize = 3
	opts.BoostRounds = 10
	// season length larger than the training history: seasonal_trend must
	// come back non-evaluable, everything else still ranks
	opts.SeasonLength = 30
	models := forecast.NewBank(opts)

	results, err := evaluate.Run(context.Background(), models, train, test)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != len(models) {
		t.Fatalf("got %d results, want %d", len(results), len(models))
	}
	var skipped, evaluable int
	for _, r := range results {
		if r.Evaluable {
			evaluable++
		} else {
			skipped++
			if r.SkipReason == "" {
				t.Fatalf("skipped result without reason: %+v", r)
			}
		}
	}
	if skipped == 0 || evaluable == 0 {
		t.Fatalf("expected a mix of skipped and evaluated: %+v", results)
	}
	if evaluate.Select(results) == "" {
		t.Fatal("no production model selected")
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := series(36)
	train, test := evaluate.Split(s, 4)
	opts := forecast.DefaultBankOptions()
	opts.BagSize = 3
	opts.BoostRounds = 10

	first, err := evaluate.Run(context.Background(), forecast.NewBank(opts), train, test)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	second, err := evaluate.Run(context.Background(), forecast.NewBank(opts), train, test)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("evaluation not deterministic:\n%+v\n%+v", first, second)
	}
}
