package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/observability"
	"github.com/geocoder89/learnhub/internal/repo"
)

// Handler runs one decoded job payload. Returning an error wrapped with
// Permanent fails the job without further retries.
type Handler func(ctx context.Context, payload any) error

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	Concurrency   int
	ShutdownGrace time.Duration
	// LockTTL is how long a claimed job may stay processing before it is
	// handed back to the queue.
	LockTTL    time.Duration
	JobTimeout time.Duration
}

type Worker struct {
	cfg      Config
	jobs     repo.JobStore
	handlers map[jobs.JobType]Handler
	prom     *observability.Prom
	log      *slog.Logger
	now      func() time.Time
	backoff  func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

func DefaultWorkerID() string {
	host, _ := os.Hostname()
	return host + "-" + strconv.Itoa(os.Getpid())
}

func New(cfg Config, store repo.JobStore, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.WorkerID == "" {
		cfg.WorkerID = DefaultWorkerID()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		jobs:     store,
		handlers: make(map[jobs.JobType]Handler),
		prom:     prom,
		log:      log.With("worker_id", cfg.WorkerID),
		now:      time.Now,
		backoff:  ExponentialBackoff,
	}
}

// Handle registers h for job type t. It must be called before Run.
func (w *Worker) Handle(t jobs.JobType, h Handler) {
	w.handlers[t] = h
}

// Run polls for jobs with cfg.Concurrency loops until ctx is cancelled,
// then waits up to ShutdownGrace for in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	// in-flight jobs outlive ctx; ShutdownGrace bounds the wait
	execCtx, cancelExec := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelExec()

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx, execCtx)
		}()
	}

	w.log.Info("worker started", "concurrency", w.cfg.Concurrency)

	<-ctx.Done()
	w.setReady(false)
	w.log.Info("worker received shutdown signal")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		cancelExec()
		<-done
		return errors.New("worker shutdown grace period exceeded")
	}
}

func (w *Worker) loop(ctx, execCtx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		// drain the queue before sleeping again
		for ctx.Err() == nil {
			processed, err := w.ProcessOne(execCtx)
			if err != nil {
				w.log.Error("process job", "err", err)
				break
			}
			if !processed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RequeueStale hands jobs locked longer than LockTTL back to the queue.
func (w *Worker) RequeueStale(ctx context.Context) (int64, error) {
	n, err := w.jobs.RequeueStaleJobs(ctx, w.cfg.LockTTL)
	if err != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", err)
	}
	if n > 0 {
		w.log.Warn("requeued stale jobs", "count", n)
	}
	return n, nil
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
