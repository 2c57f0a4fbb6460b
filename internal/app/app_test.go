package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/cache"
	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteSeedsAndCloses(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.Config{
		StoreDriver:   config.DriverSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "app.db"),
		CacheTTL:      time.Minute,
		AdminEmail:    " Admin@LearnHub.dev ",
		AdminPassword: "secret123",
		AdminName:     "Admin",
		SeedCourses:   true,
	}

	res, err := Open(ctx, cfg, nil, log)
	require.NoError(t, err)

	_, isMemory := res.Cache.(*cache.Memory)
	assert.True(t, isMemory, "no redis address should fall back to the memory cache")
	require.NoError(t, res.Store.Ping(ctx))

	require.NoError(t, Seed(ctx, cfg, res.Store, log))
	// second run must not duplicate anything
	require.NoError(t, Seed(ctx, cfg, res.Store, log))

	n, err := res.Store.CountCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	admin, err := res.Store.GetUserByEmail(ctx, "admin@learnhub.dev")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, admin.Role)

	require.NoError(t, res.Close())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := Open(context.Background(), config.Config{StoreDriver: "mongo"}, nil, log)
	assert.Error(t, err)
}
