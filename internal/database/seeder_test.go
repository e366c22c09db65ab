package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"id-collector-api/config"
	"id-collector-api/internal/repository"
)

func TestSeedAll_Idempotent(t *testing.T) {
	db, err := config.ConnectDB(config.DatabaseConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "seed.db"),
		BusyTimeout: 5,
	}, zerolog.Nop())
	require.NoError(t, err)
	defer config.CloseDB(db)

	repo := repository.NewDeviceRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))

	count, err := SeedAll(ctx, repo, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int64(len(DemoDevices())), count)

	count, err = SeedAll(ctx, repo, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, int64(len(DemoDevices())), count)

	rec, err := repo.GetByAndroidID(ctx, "demo-0000000000000002")
	require.NoError(t, err)
	assert.True(t, rec.LimitAdTracking)
	assert.Equal(t, "SM-S911B", rec.Info().Model)
}
