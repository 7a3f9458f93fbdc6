// Package memberships persists which users liked, disliked or viewed a
// target. Counters in package counters are kept in step with these rows.
package memberships

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

func (r *PostgresRepository) Insert(ctx context.Context, m models.Membership, now int64) (bool, error) {
	query := `
		INSERT INTO memberships (target_kind, target_id, kind, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (target_kind, target_id, kind, user_id) DO NOTHING
	`
	return r.exec(ctx, query, m.Target.Kind, m.Target.ID, string(m.Kind), m.UserID, now)
}

func (r *PostgresRepository) Delete(ctx context.Context, m models.Membership) (bool, error) {
	query := `
		DELETE FROM memberships
		WHERE target_kind = $1 AND target_id = $2 AND kind = $3 AND user_id = $4
	`
	return r.exec(ctx, query, m.Target.Kind, m.Target.ID, string(m.Kind), m.UserID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	changed, err := dbx.Affected(res)
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return changed, nil
}
