package memberships

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/models"
)

// Repository stores (target, kind, user) membership rows.
type Repository interface {
	// Insert adds m and reports whether it was absent before.
	Insert(ctx context.Context, m models.Membership, now int64) (bool, error)
	// Delete removes m and reports whether it was present.
	Delete(ctx context.Context, m models.Membership) (bool, error)
}
