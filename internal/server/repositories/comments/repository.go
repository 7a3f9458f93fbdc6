package comments

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, c *models.Comment) error
	// SelectAfter returns comments on target with seq > cursor, oldest first.
	// limit <= 0 means no limit.
	SelectAfter(ctx context.Context, target models.TargetRef, cursor int64, limit int) ([]*models.Comment, error)
}
