// Package follows persists the directed follow graph between users.
package follows

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Extra154/spectra-data-server/internal/dbx"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, f models.Follow) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followed_id, followed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, f.FollowerID, f.FollowedID, f.FollowedAt)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, followerID, followedID string) (bool, error) {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followed_id = $2`
	res, err := r.db.ExecContext(ctx, query, followerID, followedID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	ok, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, followerID, followedID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Following(ctx context.Context, followerID string) ([]string, error) {
	query := `SELECT followed_id FROM follows WHERE follower_id = $1 ORDER BY followed_id`
	rows, err := r.db.QueryContext(ctx, query, followerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select follows: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
