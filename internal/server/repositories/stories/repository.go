package stories

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type Repository interface {
	// Insert stores s and reports false when the id is taken.
	Insert(ctx context.Context, s *models.Story) (bool, error)
	// GetForUpdate returns the story without viewers and, inside a
	// transaction, holds its row until commit. ErrorNotFound when absent.
	GetForUpdate(ctx context.Context, id string) (*models.Story, error)
	// Delete removes the story and its viewers.
	Delete(ctx context.Context, id string) (bool, error)
	// AddViewer records viewerID once; repeats are ignored.
	AddViewer(ctx context.Context, id, viewerID string, now int64) error
	// Viewers returns the story's viewer ids in ascending order.
	Viewers(ctx context.Context, id string) ([]string, error)
	// SelectActive returns stories created at or after cutoff, with viewers,
	// oldest first.
	SelectActive(ctx context.Context, cutoff int64) ([]*models.Story, error)
	// DeleteExpired removes stories created before cutoff and returns their
	// ids in ascending order.
	DeleteExpired(ctx context.Context, cutoff int64) ([]string, error)
}
