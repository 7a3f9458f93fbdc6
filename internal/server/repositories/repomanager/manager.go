package repomanager

import (
	"context"

	"github.com/Extra154/spectra-data-server/internal/server/repositories/comments"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/containers"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/counters"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/follows"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memberships"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/records"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/stories"
)

// Repositories is one consistent view of the store: either autocommit or a
// single transaction, depending on where it came from.
type Repositories interface {
	Containers() containers.Repository
	Records() records.Repository
	Counters() counters.Repository
	Memberships() memberships.Repository
	Comments() comments.Repository
	Stories() stories.Repository
	Follows() follows.Repository
}

// TxFunc runs against repositories bound to one transaction.
type TxFunc func(ctx context.Context, r Repositories) error

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Repositories returns autocommit repositories.
	Repositories() Repositories
	// WithTx runs fn in a transaction that commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn TxFunc) error
	Close() error
}
