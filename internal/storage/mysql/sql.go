package mysql

// Raw reviews are the immutable corpus; the loader upserts, the pipeline
// only reads.
const insertReviewsPrefix = "INSERT INTO reviews\n  (review_id, product_id, category, created_at, raw_rating, `text`)\nVALUES "

const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  product_id = VALUES(product_id),\n" +
	"  category   = VALUES(category),\n" +
	"  created_at = VALUES(created_at),\n" +
	"  raw_rating = VALUES(raw_rating),\n" +
	"  `text`     = VALUES(`text`)\n"

const listReviewsSQL = `
SELECT review_id, product_id, category, created_at, raw_rating, ` + "`text`" + `
FROM reviews
ORDER BY created_at, review_id
`

// Derived tables are rewritten wholesale per run.
const deleteCorrectedSQL = `DELETE FROM corrected_reviews`

const insertCorrectedPrefix = "INSERT INTO corrected_reviews\n" +
	"  (review_id, product_id, category, created_at, raw_rating, sentiment_score, sentiment_label, corrected_rating, is_overrated, overrated_index)\nVALUES "

const listCorrectedSQL = `
SELECT review_id, product_id, category, created_at, raw_rating,
       sentiment_score, sentiment_label, corrected_rating, is_overrated, overrated_index
FROM corrected_reviews
WHERE product_id = ?
ORDER BY created_at DESC, review_id DESC
LIMIT ?
`

const deleteAggregatesSQL = `DELETE FROM monthly_aggregates`

const insertAggregatesPrefix = "INSERT INTO monthly_aggregates\n" +
	"  (group_dim, group_key, ym, mean_raw, mean_corrected, review_count, overrated_ratio, forecast_gap, high_risk)\nVALUES "

const listAggregatesSQL = `
SELECT group_dim, group_key, ym, mean_raw, mean_corrected, review_count, overrated_ratio, forecast_gap, high_risk
FROM monthly_aggregates
WHERE group_dim = ? AND group_key = ?
ORDER BY ym
`

const deleteEvaluationsSQL = `DELETE FROM model_evaluations`

const insertEvaluationsPrefix = "INSERT INTO model_evaluations\n" +
	"  (rank_order, model_name, mae, rmse, evaluable, skip_reason)\nVALUES "

const listEvaluationsSQL = `
SELECT model_name, mae, rmse, evaluable, skip_reason
FROM model_evaluations
ORDER BY rank_order
`

const deleteForecastsSQL = `DELETE FROM forecasts WHERE group_dim = ?`

const insertForecastsPrefix = "INSERT INTO forecasts\n  (group_dim, group_key, ym, value)\nVALUES "

const getForecastSQL = `
SELECT ym, value
FROM forecasts
WHERE group_dim = ? AND group_key = ?
ORDER BY ym
`

const upsertArtifactSQL = `
INSERT INTO model_artifacts (model_name, artifact, created_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON DUPLICATE KEY UPDATE
  artifact   = VALUES(artifact),
  created_at = CURRENT_TIMESTAMP
`

const getArtifactSQL = `SELECT artifact FROM model_artifacts WHERE model_name = ?`

const overviewSQL = `
SELECT COUNT(*),
       COALESCE(AVG(raw_rating), 0),
       COALESCE(AVG(corrected_rating), 0),
       COALESCE(AVG(raw_rating - corrected_rating), 0),
       COALESCE(AVG(is_overrated) * 100, 0)
FROM corrected_reviews
`
