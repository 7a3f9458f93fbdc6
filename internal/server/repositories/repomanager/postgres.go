// Package repomanager bundles the repositories behind one transactional
// entry point. The PostgreSQL manager runs goose migrations and binds every
// repository to either the pool or a transaction.
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/Extra154/spectra-data-server/internal/dbx"
	"github.com/Extra154/spectra-data-server/internal/server/migrations"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/comments"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/containers"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/counters"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/follows"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memberships"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/records"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/stories"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct {
	db *sql.DB
}

// NewPostgresRepositoryManager wraps an open pgx-backed *sql.DB.
func NewPostgresRepositoryManager(db *sql.DB) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, m.db, ".")
}

func (m *PostgresRepositoryManager) Repositories() Repositories {
	return &postgresRepositories{db: m.db}
}

func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &postgresRepositories{db: tx})
	})
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

type postgresRepositories struct {
	db dbx.DBTX
}

func (r *postgresRepositories) Containers() containers.Repository {
	return containers.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Records() records.Repository {
	return records.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Counters() counters.Repository {
	return counters.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Memberships() memberships.Repository {
	return memberships.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Comments() comments.Repository {
	return comments.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Stories() stories.Repository {
	return stories.NewPostgresRepository(r.db)
}

func (r *postgresRepositories) Follows() follows.Repository {
	return follows.NewPostgresRepository(r.db)
}
