package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/learnhub/internal/app"
	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/geocoder89/learnhub/internal/notifications"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/queue/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "worker:", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so each exit path closes them through
// its defers.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := observability.NewLogger(cfg.Env).With("component", "worker")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

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

	var notifier notifications.Notifier = notifications.NewLogNotifier(log)
	if cfg.SendGridAPIKey != "" {
		notifier = notifications.NewSendGridNotifier(notifications.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFrom,
		})
	}
	notifier = notifications.NewProtectedNotifier(notifier, notifications.ProtectedNotifierConfig{})

	catalog := learning.NewCatalog(res.Store, res.Cache, prom, log)
	reconciler := learning.NewReconciler(res.Store, catalog, log)

	w := worker.New(worker.Config{
		PollInterval:  cfg.WorkerPoll,
		Concurrency:   cfg.WorkerConcurrency,
		ShutdownGrace: 10 * time.Second,
	}, res.Store, prom, log)

	w.Handle(jobs.JobEnrollmentWelcome, worker.WelcomeHandler(res.Store, notifier))
	w.Handle(jobs.JobCourseReconcile, worker.ReconcileHandler(reconciler))

	// periodic maintenance: full reconcile sweep and stale lock recovery
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.ReconcileCron, func() {
		n, err := reconciler.EnqueueAll(ctx, time.Now())
		if err != nil {
			log.Error("schedule reconcile failed", "err", err)
			return
		}
		log.Info("reconcile jobs scheduled", "courses", n)
	}); err != nil {
		return fmt.Errorf("invalid RECONCILE_CRON %q: %w", cfg.ReconcileCron, err)
	}
	if _, err := sched.AddFunc("@every 30s", func() {
		if _, err := w.RequeueStale(ctx); err != nil {
			log.Error("requeue stale jobs failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule requeue: %w", err)
	}
	sched.Start()

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           w.HealthHandler(res.Store, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	log.Info("worker has started", "concurrency", cfg.WorkerConcurrency, "health_port", cfg.WorkerHealthPort)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	<-sched.Stop().Done()

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker shutdown complete")
	return nil
}
