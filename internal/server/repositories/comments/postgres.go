// Package comments persists the append-only comment threads of engagement
// targets.
package comments

import (
	"context"
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

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (target_kind, target_id, seq, id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.Target.Kind, c.Target.ID, c.Seq, c.ID, c.UserID, c.Text, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectAfter(ctx context.Context, target models.TargetRef, cursor int64, limit int) ([]*models.Comment, error) {
	query := `
		SELECT seq, id, user_id, body, created_at FROM comments
		WHERE target_kind = $1 AND target_id = $2 AND seq > $3
		ORDER BY seq ASC
		LIMIT NULLIF($4::bigint, 0)
	`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.QueryContext(ctx, query, target.Kind, target.ID, cursor, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c := &models.Comment{Target: target}
		if err := rows.Scan(&c.Seq, &c.ID, &c.UserID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
