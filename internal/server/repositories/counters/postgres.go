// Package counters persists engagement targets: the denormalized like,
// dislike, view, comment and rating counters of posts, providers and stories.
package counters

import (
	"context"
	"fmt"

	"github.com/Extra154/spectra-data-server/internal/dbx"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

var counterColumns = map[models.Counter]string{
	models.CounterLikes:    "like_num",
	models.CounterDislikes: "dislike_num",
	models.CounterViews:    "view_count",
	models.CounterComments: "comment_num",
}

const selectColumns = `like_num, dislike_num, view_count, comment_num, rating_sum, rating_count, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Ensure(ctx context.Context, target models.TargetRef, now int64) error {
	query := `
		INSERT INTO engagement_targets (target_kind, target_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (target_kind, target_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, target.Kind, target.ID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Lock(ctx context.Context, target models.TargetRef) (*models.Counters, error) {
	query := `SELECT ` + selectColumns + ` FROM engagement_targets
		WHERE target_kind = $1 AND target_id = $2
		FOR UPDATE`
	return r.scanOne(ctx, query, target)
}

func (r *PostgresRepository) Get(ctx context.Context, target models.TargetRef) (*models.Counters, error) {
	query := `SELECT ` + selectColumns + ` FROM engagement_targets
		WHERE target_kind = $1 AND target_id = $2`
	return r.scanOne(ctx, query, target)
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, target models.TargetRef) (*models.Counters, error) {
	c := &models.Counters{Target: target}
	err := r.db.QueryRowContext(ctx, query, target.Kind, target.ID).Scan(
		&c.Likes, &c.Dislikes, &c.Views, &c.Comments, &c.RatingSum, &c.RatingCount, &c.CreatedAt)
	if err != nil {
		return nil, dbx.WrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Increment(ctx context.Context, target models.TargetRef, counter models.Counter, delta int64) (int64, error) {
	col, ok := counterColumns[counter]
	if !ok {
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
	query := `UPDATE engagement_targets SET ` + col + ` = ` + col + ` + $3
		WHERE target_kind = $1 AND target_id = $2
		RETURNING ` + col
	var value int64
	if err := r.db.QueryRowContext(ctx, query, target.Kind, target.ID, delta).Scan(&value); err != nil {
		return 0, dbx.WrapErr(err)
	}
	return value, nil
}

func (r *PostgresRepository) AddRating(ctx context.Context, target models.TargetRef, score int64) (*models.Counters, error) {
	query := `UPDATE engagement_targets
		SET rating_sum = rating_sum + $3, rating_count = rating_count + 1
		WHERE target_kind = $1 AND target_id = $2
		RETURNING ` + selectColumns
	c := &models.Counters{Target: target}
	err := r.db.QueryRowContext(ctx, query, target.Kind, target.ID, score).Scan(
		&c.Likes, &c.Dislikes, &c.Views, &c.Comments, &c.RatingSum, &c.RatingCount, &c.CreatedAt)
	if err != nil {
		return nil, dbx.WrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, target models.TargetRef) (bool, error) {
	query := `DELETE FROM engagement_targets WHERE target_kind = $1 AND target_id = $2`
	res, err := r.db.ExecContext(ctx, query, target.Kind, target.ID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	deleted, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return deleted, nil
}

func (r *PostgresRepository) Drift(ctx context.Context) ([]models.CounterDrift, error) {
	query := `
		SELECT t.target_kind, t.target_id, k.counter, k.stored, COUNT(m.user_id)
		FROM engagement_targets t
		CROSS JOIN LATERAL (VALUES
			('like', 'likes', t.like_num),
			('dislike', 'dislikes', t.dislike_num),
			('view', 'views', t.view_count)
		) AS k(kind, counter, stored)
		LEFT JOIN memberships m
			ON m.target_kind = t.target_kind AND m.target_id = t.target_id AND m.kind = k.kind
		GROUP BY t.target_kind, t.target_id, k.counter, k.stored
		HAVING COUNT(m.user_id) <> k.stored
		ORDER BY t.target_kind, t.target_id, k.counter
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to audit counters: %w", err)
	}
	defer rows.Close()

	var result []models.CounterDrift
	for rows.Next() {
		var d models.CounterDrift
		var counter string
		if err := rows.Scan(&d.Target.Kind, &d.Target.ID, &counter, &d.Stored, &d.Actual); err != nil {
			return nil, err
		}
		d.Counter = models.Counter(counter)
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
