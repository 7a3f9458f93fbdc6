package records

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type Repository interface {
	// Get returns the stored record or ErrorNotFound.
	Get(ctx context.Context, collection, containerID, id string) (*models.Record, error)
	// Upsert writes r under its (collection, container, id) key.
	Upsert(ctx context.Context, r *models.Record) error
	// SelectAfter returns records with seq > cursor in ascending seq order.
	// limit <= 0 means no limit.
	SelectAfter(ctx context.Context, collection, containerID string, cursor int64, limit int) ([]*models.Record, error)
}
