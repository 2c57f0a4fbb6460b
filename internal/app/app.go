// Package app opens the process-wide resources shared by the api and worker
// binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/learnhub/internal/cache"
	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/db"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/geocoder89/learnhub/internal/repo/postgres"
	"github.com/geocoder89/learnhub/internal/repo/sqlite"
)

type Resources struct {
	Store repo.Store
	Cache cache.Store

	closers []func() error
}

// Open connects the configured store and cache. Postgres schemas are
// migrated before the store is returned; SQLite migrates on open.
func Open(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (*Resources, error) {
	res := &Resources{}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db migrate: %w", err)
		}
		store := postgres.New(pool, prom)
		res.Store = store
		res.closers = append(res.closers, store.Close)

	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, prom)
		if err != nil {
			return nil, err
		}
		res.Store = store
		res.closers = append(res.closers, store.Close)

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err := rc.Ping(ctx); err != nil {
			// the catalog degrades to store reads when redis is down
			log.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "err", err)
		}
		res.Cache = rc
		res.closers = append(res.closers, rc.Close)
	} else {
		res.Cache = cache.NewMemory(cfg.CacheTTL)
	}

	log.Info("resources ready", "store", cfg.StoreDriver, "redis", cfg.RedisAddr != "")
	return res, nil
}

// Close releases resources in reverse order of opening.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Seed creates the admin account and, when enabled, the sample catalog.
func Seed(ctx context.Context, cfg config.Config, store repo.Store, log *slog.Logger) error {
	if err := db.EnsureAdminUser(ctx, store, cfg); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if !cfg.SeedCourses {
		return nil
	}

	n, err := db.SeedCourses(ctx, store)
	if err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}
	if n > 0 {
		log.Info("sample courses seeded", "count", n)
	}
	return nil
}
