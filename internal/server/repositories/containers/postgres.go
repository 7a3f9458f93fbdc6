// Package containers persists sync containers: per-conversation scopes that
// own a strictly increasing record sequence.
package containers

import (
	"context"
	"fmt"

	"github.com/Extra154/spectra-data-server/internal/dbx"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, collection, containerID string, now int64) (bool, error) {
	query := `
		INSERT INTO containers (collection, container_id, last_seq, created_at)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (collection, container_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, collection, containerID, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	created, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) Lock(ctx context.Context, collection, containerID string) (int64, error) {
	query := `
		SELECT last_seq FROM containers
		WHERE collection = $1 AND container_id = $2
		FOR UPDATE
	`
	var seq int64
	if err := r.db.QueryRowContext(ctx, query, collection, containerID).Scan(&seq); err != nil {
		return 0, dbx.WrapErr(err)
	}
	return seq, nil
}

func (r *PostgresRepository) NextSeq(ctx context.Context, collection, containerID string) (int64, error) {
	query := `
		UPDATE containers SET last_seq = last_seq + 1
		WHERE collection = $1 AND container_id = $2
		RETURNING last_seq
	`
	var seq int64
	if err := r.db.QueryRowContext(ctx, query, collection, containerID).Scan(&seq); err != nil {
		return 0, dbx.WrapErr(err)
	}
	return seq, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, collection, containerID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM containers WHERE collection = $1 AND container_id = $2)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, collection, containerID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}
