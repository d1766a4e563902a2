package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ratinglens/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- write paths ----

func (r *Repo) InsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*6)
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?)")
		args = append(args, rv.ReviewID, rv.ProductID, rv.Category, rv.Timestamp.UTC(), rv.RawRating, rv.Text)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// replaceBatch deletes the previous run's rows and inserts the new ones in
// one transaction, chunked to stay under the placeholder limit.
func (r *Repo) replaceBatch(ctx context.Context, deleteSQL string, deleteArgs []any, insertPrefix string, perRow int, rows [][]any) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deleteSQL, deleteArgs...); err != nil {
		return err
	}

	const chunk = 500
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", perRow), ",") + ")"
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]
		values := make([]string, len(batch))
		args := make([]any, 0, len(batch)*perRow)
		for i, row := range batch {
			values[i] = placeholder
			args = append(args, row...)
		}
		if _, err := tx.ExecContext(ctx, insertPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) ReplaceCorrectedReviews(ctx context.Context, rs []domain.CorrectedReview) error {
	rows := make([][]any, len(rs))
	for i, rv := range rs {
		rows[i] = []any{
			rv.ReviewID, rv.ProductID, rv.Category, rv.Timestamp.UTC(), rv.RawRating,
			rv.SentimentScore, string(rv.SentimentLabel), rv.CorrectedRating, rv.IsOverrated, rv.OverratedIndex,
		}
	}
	return r.replaceBatch(ctx, deleteCorrectedSQL, nil, insertCorrectedPrefix, 10, rows)
}

func (r *Repo) ReplaceAggregates(ctx context.Context, as []domain.MonthlyAggregate) error {
	rows := make([][]any, len(as))
	for i, a := range as {
		rows[i] = []any{
			string(a.GroupBy), a.GroupKey, a.Month.String(), a.MeanRawRating, a.MeanCorrectedRating,
			a.ReviewCount, a.OverratedRatio, a.ForecastGap, a.HighRisk,
		}
	}
	return r.replaceBatch(ctx, deleteAggregatesSQL, nil, insertAggregatesPrefix, 9, rows)
}

func (r *Repo) ReplaceEvaluations(ctx context.Context, es []domain.EvaluationResult) error {
	rows := make([][]any, len(es))
	for i, e := range es {
		rows[i] = []any{i, e.ModelName, e.MAE, e.RMSE, e.Evaluable, e.SkipReason}
	}
	return r.replaceBatch(ctx, deleteEvaluationsSQL, nil, insertEvaluationsPrefix, 6, rows)
}

func (r *Repo) ReplaceForecasts(ctx context.Context, groupBy domain.GroupBy, fs []domain.ForecastSeries) error {
	var rows [][]any
	for _, f := range fs {
		for _, p := range f.Points {
			rows = append(rows, []any{string(groupBy), f.GroupKey, p.Month.String(), p.Value})
		}
	}
	return r.replaceBatch(ctx, deleteForecastsSQL, []any{string(groupBy)}, insertForecastsPrefix, 4, rows)
}

func (r *Repo) SaveModelArtifact(ctx context.Context, modelName string, blob []byte) error {
	_, err := r.db.ExecContext(ctx, upsertArtifactSQL, modelName, blob)
	return err
}

// ---- read paths ----

func (r *Repo) ListReviews(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ReviewID, &rv.ProductID, &rv.Category, &rv.Timestamp, &rv.RawRating, &rv.Text); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListCorrectedReviews(ctx context.Context, productID string, pg domain.PageQuery) ([]domain.CorrectedReview, error) {
	limit := pg.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listCorrectedSQL, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CorrectedReview
	for rows.Next() {
		var rv domain.CorrectedReview
		var label string
		if err := rows.Scan(
			&rv.ReviewID, &rv.ProductID, &rv.Category, &rv.Timestamp, &rv.RawRating,
			&rv.SentimentScore, &label, &rv.CorrectedRating, &rv.IsOverrated, &rv.OverratedIndex,
		); err != nil {
			return nil, err
		}
		rv.SentimentLabel = domain.SentimentLabel(label)
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *Repo) ListAggregates(ctx context.Context, groupBy domain.GroupBy, key string) ([]domain.MonthlyAggregate, error) {
	rows, err := r.db.QueryContext(ctx, listAggregatesSQL, string(groupBy), key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MonthlyAggregate
	for rows.Next() {
		var a domain.MonthlyAggregate
		var dim, ym string
		if err := rows.Scan(&dim, &a.GroupKey, &ym, &a.MeanRawRating, &a.MeanCorrectedRating,
			&a.ReviewCount, &a.OverratedRatio, &a.ForecastGap, &a.HighRisk); err != nil {
			return nil, err
		}
		a.GroupBy = domain.GroupBy(dim)
		month, err := domain.ParseYearMonth(ym)
		if err != nil {
			return nil, fmt.Errorf("bad ym %q: %w", ym, err)
		}
		a.Month = month
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (r *Repo) ListEvaluations(ctx context.Context) ([]domain.EvaluationResult, error) {
	rows, err := r.db.QueryContext(ctx, listEvaluationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.EvaluationResult
	for rows.Next() {
		var e domain.EvaluationResult
		if err := rows.Scan(&e.ModelName, &e.MAE, &e.RMSE, &e.Evaluable, &e.SkipReason); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) GetForecast(ctx context.Context, groupBy domain.GroupBy, key string) (domain.ForecastSeries, error) {
	rows, err := r.db.QueryContext(ctx, getForecastSQL, string(groupBy), key)
	if err != nil {
		return domain.ForecastSeries{}, err
	}
	defer rows.Close()

	s := domain.ForecastSeries{GroupKey: key}
	for rows.Next() {
		var ym string
		var p domain.ForecastPoint
		if err := rows.Scan(&ym, &p.Value); err != nil {
			return domain.ForecastSeries{}, err
		}
		month, err := domain.ParseYearMonth(ym)
		if err != nil {
			return domain.ForecastSeries{}, fmt.Errorf("bad ym %q: %w", ym, err)
		}
		p.Month = month
		s.Points = append(s.Points, p)
	}
	if err := rows.Err(); err != nil {
		return domain.ForecastSeries{}, err
	}
	if s.Len() == 0 {
		return domain.ForecastSeries{}, domain.ErrNotFound
	}
	return s, nil
}

func (r *Repo) GetOverview(ctx context.Context) (domain.Overview, error) {
	var o domain.Overview
	err := r.db.QueryRowContext(ctx, overviewSQL).Scan(
		&o.TotalReviews, &o.AvgRawRating, &o.AvgCorrectedRating, &o.AvgRatingGap, &o.OverratedPercent,
	)
	return o, err
}

func (r *Repo) LoadModelArtifact(ctx context.Context, modelName string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRowContext(ctx, getArtifactSQL, modelName).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return blob, err
}
