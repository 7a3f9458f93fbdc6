// Package server wires configuration, storage and services into the running
// sync server and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Extra154/spectra-data-server/internal/clock"
	"github.com/Extra154/spectra-data-server/internal/logging"
	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/repomanager"
	"github.com/Extra154/spectra-data-server/internal/server/services"
	"github.com/Extra154/spectra-data-server/internal/server/storage"

	gs "github.com/Extra154/spectra-data-server/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	clock   clock.Clock
	store   repomanager.RepositoryManager
	sync    *services.SyncService
	engage  *services.EngagementService
	stories *services.StoryService
	social  *services.SocialService
}

// NewApp opens the store named by c and builds the services on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := storage.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	clk := clock.NewMonotonic(clock.RealClock{})
	ids := clock.UUIDGenerator{}

	return &App{
		config:  c,
		logger:  logger,
		clock:   clk,
		store:   store,
		sync:    services.NewSyncService(store, clk, ids, c, logger),
		engage:  services.NewEngagementService(store, clk, ids, c, logger),
		stories: services.NewStoryService(store, clk, ids, c, logger),
		social:  services.NewSocialService(store, clk, logger),
	}, nil
}

// initSignalHandler cancels on SIGINT, SIGTERM or SIGQUIT. The returned
// channel is closed once the handler is unregistered.
func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) <-chan struct{} {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			app.logger.Info(ctx, "shutdown signal received", "signal", sig.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
	return stopped
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.clock, app.config.RequestTimeout, gs.Services{
		Sync:       app.sync,
		Engagement: app.engage,
		Stories:    app.stories,
		Social:     app.social,
	})
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is done or a shutdown signal arrives, then closes the
// store.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.StoreDriver, "story_ttl", app.config.StoryTTL.String())

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if interval := app.config.StorySweepInterval; interval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.stories.RunSweeper(ctx, interval)
		}()
	}

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "closing store", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
