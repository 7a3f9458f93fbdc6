package counters

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

// Repository stores engagement targets and their denormalized counters.
type Repository interface {
	// Ensure creates the target with zero counters unless it exists.
	Ensure(ctx context.Context, target models.TargetRef, now int64) error
	// Lock reads the target's counters and, inside a transaction, holds its
	// row until commit. ErrorNotFound when absent.
	Lock(ctx context.Context, target models.TargetRef) (*models.Counters, error)
	Get(ctx context.Context, target models.TargetRef) (*models.Counters, error)
	// Increment adds delta to one counter and returns the new value.
	Increment(ctx context.Context, target models.TargetRef, counter models.Counter, delta int64) (int64, error)
	// AddRating folds one score into the rating aggregate.
	AddRating(ctx context.Context, target models.TargetRef, score int64) (*models.Counters, error)
	// Delete removes the target together with its memberships and comments.
	Delete(ctx context.Context, target models.TargetRef) (bool, error)
	// Drift lists like/dislike/view counters that disagree with the number
	// of membership rows backing them.
	Drift(ctx context.Context) ([]models.CounterDrift, error)
}
