package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/jobs"
)

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// ProcessOne claims and runs at most one job. It reports whether a job was
// claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.jobs.ClaimNextJob(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := w.now()
	err = w.execute(ctx, j)

	if err != nil {
		result := w.handleFailure(ctx, j, err)
		w.observe(j.Type, result, start)
		return true, nil
	}

	err = w.jobs.MarkJobDone(ctx, j.ID)

	if err != nil {
		_ = w.jobs.MarkJobFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observe(j.Type, "failed", start)
		return true, err
	}

	w.observe(j.Type, "done", start)
	w.log.InfoContext(ctx, "job done", "job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts+1)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	t := jobs.JobType(j.Type)

	h, ok := w.handlers[t]
	if !ok {
		return Permanent(fmt.Errorf("%w: %q", jobs.ErrInvalidJobType, j.Type))
	}

	payload, err := jobs.DecodePayload(t, j.Payload)
	if err != nil {
		return Permanent(err)
	}

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.JobTimeout)
	defer cancel()

	return h(runCtx, payload)
}

// handleFailure reschedules j with backoff or fails it for good, and
// returns the metric result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, runErr error) string {
	msg := runErr.Error()
	attempt := j.Attempts + 1

	if isPermanent(runErr) || attempt >= j.MaxAttempts {
		if err := w.jobs.MarkJobFailed(ctx, j.ID, msg); err != nil {
			w.log.ErrorContext(ctx, "mark job failed", "job_id", j.ID, "err", err)
		}
		w.log.ErrorContext(ctx, "job failed",
			"job_id", j.ID, "job_type", j.Type, "attempt", attempt, "err", runErr)
		return "failed"
	}

	runAt := w.now().Add(w.backoff(j.Attempts))
	if err := w.jobs.RescheduleJob(ctx, j.ID, runAt, msg); err != nil {
		w.log.ErrorContext(ctx, "reschedule job", "job_id", j.ID, "err", err)
	}
	w.log.WarnContext(ctx, "job retry scheduled",
		"job_id", j.ID, "job_type", j.Type, "attempt", attempt, "run_at", runAt, "err", runErr)
	return "retry"
}

func (w *Worker) observe(jobType, result string, start time.Time) {
	if w.prom != nil {
		w.prom.ObserveJob(jobType, result, w.now().Sub(start))
	}
}
