package services

import (
	"context"
	"errors"
	"testing"

	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/models"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/counters"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memory"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/records"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
	"github.com/Extra154/spectra-data-server/internal/testutil"
)

type env struct {
	store      *memory.Manager
	clock      *testutil.StubClock
	sync       *SyncService
	engagement *EngagementService
	stories    *StoryService
	social     *SocialService
}

func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.StoreDriver = config.DriverMemory
	cfg.PullLimit = 0
	for _, m := range mutate {
		m(cfg)
	}

	store := memory.NewManager()
	t.Cleanup(func() { _ = store.Close() })
	clk := testutil.FixedClock()
	ids := testutil.NewStubIDGenerator()
	log := logging.Nop{}

	return &env{
		store:      store,
		clock:      clk,
		sync:       NewSyncService(store, clk, ids, cfg, log),
		engagement: NewEngagementService(store, clk, ids, cfg, log),
		stories:    NewStoryService(store, clk, ids, cfg, log),
		social:     NewSocialService(store, clk, log),
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "connection reset by peer" }

// brokenManager fails every store call the way a dropped connection would.
type brokenManager struct {
	repomanager.RepositoryManager
}

func (brokenManager) WithTx(context.Context, repomanager.TxFunc) error { return errBoom{} }

func (brokenManager) Repositories() repomanager.Repositories { return brokenRepos{} }

type brokenRepos struct {
	repomanager.Repositories
}

func (brokenRepos) Records() records.Repository   { return brokenRecords{} }
func (brokenRepos) Counters() counters.Repository { return brokenCounters{} }

type brokenRecords struct {
	records.Repository
}

func (brokenRecords) SelectAfter(context.Context, string, string, int64, int) ([]*models.Record, error) {
	return nil, errBoom{}
}

type brokenCounters struct {
	counters.Repository
}

func (brokenCounters) Get(context.Context, models.TargetRef) (*models.Counters, error) {
	return nil, errBoom{}
}

func isBoom(err error) bool {
	var b errBoom
	return errors.As(err, &b)
}
