// Package memory is a process-local store implementing every repository.
// Transactions run one at a time against a copy of the state that replaces
// the live state on commit, which gives serializable isolation.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Extra154/spectra-data-server/internal/server/repositories/comments"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/containers"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/counters"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/follows"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memberships"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/records"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/stories"
)

var errClosed = errors.New("memory store closed")

type Manager struct {
	mu     sync.Mutex
	state  *state
	closed bool
}

func NewManager() *Manager {
	return &Manager{state: newState()}
}

func (m *Manager) RunMigrations(ctx context.Context) error {
	return ctx.Err()
}

func (m *Manager) Repositories() repomanager.Repositories {
	return &view{m: m}
}

func (m *Manager) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}

	work := m.state.clone()
	if err := fn(ctx, &view{m: m, tx: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// view routes repository calls either to a transaction's working copy or,
// under the manager lock, to the live state.
type view struct {
	m  *Manager
	tx *state
}

func (v *view) with(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.m.mu.Lock()
	defer v.m.mu.Unlock()
	if v.m.closed {
		return errClosed
	}
	return fn(v.m.state)
}

func (v *view) Containers() containers.Repository   { return containersRepo{v} }
func (v *view) Records() records.Repository         { return recordsRepo{v} }
func (v *view) Counters() counters.Repository       { return countersRepo{v} }
func (v *view) Memberships() memberships.Repository { return membershipsRepo{v} }
func (v *view) Comments() comments.Repository       { return commentsRepo{v} }
func (v *view) Stories() stories.Repository         { return storiesRepo{v} }
func (v *view) Follows() follows.Repository         { return followsRepo{v} }
