package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"ratinglens/internal/adapters/observability"
	redisad "ratinglens/internal/adapters/redis"
	"ratinglens/internal/app"
	"ratinglens/internal/shared"
	mysqlrepo "ratinglens/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Int("workers", cfg.Workers).
		Float64("correction_weight", cfg.CorrectionWeight).
		Int("horizon_months", cfg.HorizonMonths).
		Msg("pipeline starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// optional corpus import before the run
	if path := os.Getenv("REVIEWS_FILE"); path != "" {
		importReviews(ctx, repo, path)
	}

	svc := app.NewPipelineService(repo, cache, cfg)
	res, err := svc.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline failed")
	}

	log.Info().
		Int("total_reviews", res.Manifest.TotalReviews).
		Int("dropped_reviews", len(res.Manifest.DroppedReviews)).
		Int("skipped_models", len(res.Manifest.SkippedModels)).
		Int("skipped_groups", len(res.Manifest.SkippedGroups)).
		Str("selected_model", res.Manifest.SelectedModel).
		Msg("pipeline completed")
}

// importReviews loads a JSON export (array of records) and upserts it into
// the reviews table. Malformed records are logged and skipped.
func importReviews(ctx context.Context, repo *mysqlrepo.Repo, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Str("file", path).Err(err).Msg("open reviews file failed")
	}
	defer f.Close()

	var recs []map[string]any
	if err := json.NewDecoder(f).Decode(&recs); err != nil {
		log.Fatal().Str("file", path).Err(err).Msg("decode reviews file failed")
	}

	reviews, dropped := app.MapReviews(recs)
	for _, d := range dropped {
		log.Warn().Str("record", d.Key).Str("reason", d.Reason).Msg("record skipped")
	}
	if err := repo.InsertReviews(ctx, reviews); err != nil {
		log.Fatal().Err(err).Msg("insert reviews failed")
	}
	log.Info().
		Int("imported", len(reviews)).
		Int("skipped", len(dropped)).
		Msg("corpus imported")
}
