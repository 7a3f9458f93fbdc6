package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Extra154/spectra-data-server/internal/server/config"
	"github.com/Extra154/spectra-data-server/internal/server/repositories/memory"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory}

	rm, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rm.Close() })
	assert.IsType(t, &memory.Manager{}, rm)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StoreDriver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, &config.Config{
		StoreDriver: config.DriverPostgres,
		DatabaseDSN: "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
}
