package follows

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

type Repository interface {
	// Insert adds the edge and reports whether it was new.
	Insert(ctx context.Context, f models.Follow) (bool, error)
	// Delete removes the edge and reports whether it existed.
	Delete(ctx context.Context, followerID, followedID string) (bool, error)
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	// Following lists the ids followerID follows, ascending.
	Following(ctx context.Context, followerID string) ([]string, error)
}
