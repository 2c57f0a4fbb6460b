package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const jobColumns = `id, type, payload, status, attempts, max_attempts,
	run_at, locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`

func scanJob(row pgx.Row) (job.Job, error) {
	var (
		j      job.Job
		status string
	)

	err := row.Scan(
		&j.ID, &j.Type, &j.Payload, &status,
		&j.Attempts, &j.MaxAttempts,
		&j.RunAt, &j.LockedAt, &j.LockedBy,
		&j.LastError, &j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return job.Job{}, job.ErrJobNotFound
		}
		return job.Job{}, err
	}

	j.Status = job.Status(status)
	return j, nil
}

// insertJob inserts unless the idempotency key is taken, in which case the
// existing row is returned. ON CONFLICT keeps a surrounding tx usable.
func insertJob(ctx context.Context, q querier, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	tag, err := q.Exec(ctx, `
		INSERT INTO jobs (id, type, payload, status, attempts, max_attempts,
			run_at, idempotency_key, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		j.ID, j.Type, string(j.Payload), string(j.Status), j.Attempts, j.MaxAttempts,
		j.RunAt, j.IdempotencyKey, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return job.Job{}, err
	}

	if tag.RowsAffected() == 0 && req.IdempotencyKey != nil {
		return scanJob(q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE idempotency_key = $1`, *req.IdempotencyKey))
	}

	return j, nil
}

func (s *Store) CreateJob(ctx context.Context, req job.CreateRequest) (j job.Job, err error) {
	err = s.observe("jobs.create", func() error {
		j, err = insertJob(ctx, s.pool, req)
		return err
	})
	return j, err
}

func (t *tx) EnqueueJob(ctx context.Context, req job.CreateRequest) (j job.Job, err error) {
	err = t.s.observe("jobs.create_tx", func() error {
		j, err = insertJob(ctx, t.q, req)
		return err
	})
	return j, err
}

func (s *Store) GetJob(ctx context.Context, id string) (j job.Job, err error) {
	err = s.observe("jobs.get_by_id", func() error {
		j, err = scanJob(s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
		return err
	})
	return j, err
}

// ClaimNextJob is a single statement claim using the SKIP LOCKED pattern.
// Only jobs ready to run and under their attempt budget are considered.
func (s *Store) ClaimNextJob(ctx context.Context, workerID string) (j job.Job, err error) {
	err = s.observe("jobs.claim_next", func() error {
		j, err = scanJob(s.pool.QueryRow(ctx, `
			WITH next AS (
				SELECT id
				FROM jobs
				WHERE status = 'pending'
				  AND run_at <= NOW()
				  AND attempts < max_attempts
				ORDER BY run_at ASC, created_at ASC
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			UPDATE jobs
			SET status = 'processing',
			    locked_at = NOW(),
			    locked_by = $1,
			    updated_at = NOW()
			WHERE id = (SELECT id FROM next)
			RETURNING `+jobColumns, workerID))
		return err
	})
	return j, err
}

func (s *Store) MarkJobDone(ctx context.Context, id string) error {
	return s.execJob(ctx, "jobs.mark_done", `
		UPDATE jobs
		SET status = 'done',
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = NULL,
		    updated_at = NOW()
		WHERE id = $1`, id)
}

func (s *Store) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return s.execJob(ctx, "jobs.mark_failed", `
		UPDATE jobs
		SET status = 'failed',
		    attempts = attempts + 1,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $2,
		    updated_at = NOW()
		WHERE id = $1`, id, errMsg)
}

// RescheduleJob puts the job back to pending for a retry at runAt.
func (s *Store) RescheduleJob(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	return s.execJob(ctx, "jobs.reschedule", `
		UPDATE jobs
		SET status = 'pending',
		    attempts = attempts + 1,
		    run_at = $2,
		    locked_at = NULL,
		    locked_by = NULL,
		    last_error = $3,
		    updated_at = NOW()
		WHERE id = $1`, id, runAt, errMsg)
}

// RequeueStaleJobs releases processing jobs whose lock is older than lockTTL,
// e.g. after a worker crash.
func (s *Store) RequeueStaleJobs(ctx context.Context, lockTTL time.Duration) (int64, error) {
	secs := int64(lockTTL.Seconds())
	if secs <= 0 {
		secs = 30
	}

	var rows int64
	err := s.observe("jobs.requeue_stale", func() error {
		tag, err := s.pool.Exec(ctx, `
			UPDATE jobs
			SET status = 'pending',
			    locked_at = NULL,
			    locked_by = NULL,
			    updated_at = NOW()
			WHERE status = 'processing'
			  AND locked_at IS NOT NULL
			  AND locked_at < NOW() - ($1 * INTERVAL '1 second')`, secs)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})

	return rows, err
}

func (s *Store) execJob(ctx context.Context, op, sql string, args ...any) error {
	var tag pgconn.CommandTag

	err := s.observe(op, func() error {
		var err error
		tag, err = s.pool.Exec(ctx, sql, args...)
		return err
	})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return job.ErrJobNotFound
	}
	return nil
}
