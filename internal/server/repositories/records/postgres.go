// Package records persists syncable records and serves delta queries over
// their per-container sequence.
package records

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

func (r *PostgresRepository) Get(ctx context.Context, collection, containerID, id string) (*models.Record, error) {
	query := `
		SELECT seq, payload, updated_at, client_updated_at FROM records
		WHERE collection = $1 AND container_id = $2 AND id = $3
	`
	rec := &models.Record{Collection: collection, ContainerID: containerID, ID: id}
	var payload []byte
	err := r.db.QueryRowContext(ctx, query, collection, containerID, id).
		Scan(&rec.Seq, &payload, &rec.UpdatedAt, &rec.ClientUpdatedAt)
	if err != nil {
		return nil, dbx.WrapErr(err)
	}
	rec.Payload = payload
	return rec, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, rec *models.Record) error {
	query := `
		INSERT INTO records (collection, container_id, id, seq, payload, updated_at, client_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (collection, container_id, id)
		DO UPDATE SET
			seq = EXCLUDED.seq,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at,
			client_updated_at = EXCLUDED.client_updated_at
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.Collection, rec.ContainerID, rec.ID, rec.Seq, []byte(rec.Payload), rec.UpdatedAt, rec.ClientUpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

func (r *PostgresRepository) SelectAfter(ctx context.Context, collection, containerID string, cursor int64, limit int) ([]*models.Record, error) {
	query := `
		SELECT id, seq, payload, updated_at, client_updated_at FROM records
		WHERE collection = $1 AND container_id = $2 AND seq > $3
		ORDER BY seq ASC
		LIMIT NULLIF($4::bigint, 0)
	`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.QueryContext(ctx, query, collection, containerID, cursor, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		item := &models.Record{Collection: collection, ContainerID: containerID}
		var payload []byte
		if err := rows.Scan(&item.ID, &item.Seq, &payload, &item.UpdatedAt, &item.ClientUpdatedAt); err != nil {
			return nil, err
		}
		item.Payload = payload
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
