// Package stories persists ephemeral stories and their viewer sets.
package stories

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Extra154/spectra-data-server/internal/dbx"
	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, s *models.Story) (bool, error) {
	payload, err := json.Marshal(s.Payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}
	query := `
		INSERT INTO stories (id, owner_id, created_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, s.ID, s.OwnerID, s.CreatedAt, payload)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	inserted, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return inserted, nil
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Story, error) {
	query := `SELECT owner_id, created_at, payload FROM stories WHERE id = $1 FOR UPDATE`
	s := &models.Story{ID: id}
	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&s.OwnerID, &s.CreatedAt, &payload); err != nil {
		return nil, dbx.WrapErr(err)
	}
	if err := json.Unmarshal(payload, &s.Payload); err != nil {
		return nil, fmt.Errorf("decode payload of story %s: %w", id, err)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	deleted, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return deleted, nil
}

func (r *PostgresRepository) AddViewer(ctx context.Context, id, viewerID string, now int64) error {
	query := `
		INSERT INTO story_viewers (story_id, viewer_id, viewed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (story_id, viewer_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, id, viewerID, now); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Viewers(ctx context.Context, id string) ([]string, error) {
	query := `SELECT viewer_id FROM story_viewers WHERE story_id = $1 ORDER BY viewer_id`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to select viewers: %w", err)
	}
	defer rows.Close()

	viewers := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		viewers = append(viewers, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return viewers, nil
}

func (r *PostgresRepository) SelectActive(ctx context.Context, cutoff int64) ([]*models.Story, error) {
	query := `
		SELECT s.id, s.owner_id, s.created_at, s.payload,
			COALESCE(jsonb_agg(v.viewer_id ORDER BY v.viewer_id) FILTER (WHERE v.viewer_id IS NOT NULL), '[]'::jsonb)
		FROM stories s
		LEFT JOIN story_viewers v ON v.story_id = s.id
		WHERE s.created_at >= $1
		GROUP BY s.id
		ORDER BY s.created_at ASC, s.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to select stories: %w", err)
	}
	defer rows.Close()

	var result []*models.Story
	for rows.Next() {
		s := &models.Story{}
		var payload, viewers []byte
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.CreatedAt, &payload, &viewers); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payload, &s.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of story %s: %w", s.ID, err)
		}
		if err := json.Unmarshal(viewers, &s.Viewers); err != nil {
			return nil, fmt.Errorf("decode viewers of story %s: %w", s.ID, err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM stories WHERE created_at < $1 RETURNING id`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids := []string{}
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
	slices.Sort(ids)
	return ids, nil
}
