package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/learnhub/internal/app"
	"github.com/geocoder89/learnhub/internal/auth"
	"github.com/geocoder89/learnhub/internal/config"
	httpx "github.com/geocoder89/learnhub/internal/http"
	"github.com/geocoder89/learnhub/internal/http/handlers"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "api:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("tracer init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	res, err := app.Open(ctx, cfg, prom, log)
	if err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	defer func() {
		if err := res.Close(); err != nil {
			log.Error("closing resources failed", "err", err)
		}
	}()

	if err := app.Seed(ctx, cfg, res.Store, log); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	catalog := learning.NewCatalog(res.Store, res.Cache, prom, log)

	router := httpx.NewRouter(cfg, httpx.Deps{
		Log:      log,
		Prom:     prom,
		Metrics:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Tokens:   tokens,
		Users:    res.Store,
		Accounts: learning.NewAccounts(res.Store, tokens, 0, log),
		Catalog:  catalog,
		Enroller: learning.NewEnrollments(res.Store, catalog, log),
		Profiles: learning.NewProfiles(res.Store),
		Reviews:  learning.NewReviews(res.Store, catalog, log),
		Progress: learning.NewProgress(res.Store, log),
		Admin:    learning.NewReconciler(res.Store, catalog, log),
		Jobs:     res.Store,
		Ready:    map[string]handlers.Pinger{"store": res.Store, "cache": res.Cache},
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	log.Info("shutdown complete")
	return nil
}
