package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/job"
)

const jobColumns = `id, type, payload, status, attempts, max_attempts,
	run_at, locked_at, locked_by, last_error, idempotency_key, created_at, updated_at`

func scanJob(row rowScanner) (job.Job, error) {
	var (
		j                           job.Job
		payload, status             string
		runAt, createdAt, updatedAt int64
		lockedAt                    sql.NullInt64
	)

	err := row.Scan(
		&j.ID, &j.Type, &payload, &status, &j.Attempts, &j.MaxAttempts,
		&runAt, &lockedAt, &j.LockedBy, &j.LastError, &j.IdempotencyKey, &createdAt, &updatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return job.Job{}, job.ErrJobNotFound
		}
		return job.Job{}, err
	}

	j.Payload = []byte(payload)
	j.Status = job.Status(status)
	j.RunAt = fromMillis(runAt)
	j.LockedAt = fromNullMillis(lockedAt)
	j.CreatedAt = fromMillis(createdAt)
	j.UpdatedAt = fromMillis(updatedAt)
	return j, nil
}

func insertJob(ctx context.Context, q querier, req job.CreateRequest) (job.Job, error) {
	j := job.New(req)

	res, err := q.ExecContext(ctx, `
		INSERT INTO jobs (id, type, payload, status, attempts, max_attempts,
			run_at, idempotency_key, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		j.ID, j.Type, string(j.Payload), string(j.Status), j.Attempts, j.MaxAttempts,
		toMillis(j.RunAt), j.IdempotencyKey, toMillis(j.CreatedAt), toMillis(j.UpdatedAt),
	)
	if err != nil {
		return job.Job{}, err
	}

	if n, _ := res.RowsAffected(); n == 0 && req.IdempotencyKey != nil {
		return scanJob(q.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE idempotency_key = ?`, *req.IdempotencyKey))
	}

	return j, nil
}

func (s *Store) CreateJob(ctx context.Context, req job.CreateRequest) (j job.Job, err error) {
	err = s.observe("jobs.create", func() error {
		j, err = insertJob(ctx, s.db, req)
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
		j, err = scanJob(s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
		return err
	})
	return j, err
}

// ClaimNextJob picks and locks in one immediate transaction; with a single
// writer there is nothing to skip.
func (s *Store) ClaimNextJob(ctx context.Context, workerID string) (j job.Job, err error) {
	err = s.observe("jobs.claim_next", func() error {
		ts := toMillis(now())
		j, err = scanJob(s.db.QueryRowContext(ctx, `
			UPDATE jobs
			SET status = 'processing',
			    locked_at = ?,
			    locked_by = ?,
			    updated_at = ?
			WHERE id = (
				SELECT id FROM jobs
				WHERE status = 'pending'
				  AND run_at <= ?
				  AND attempts < max_attempts
				ORDER BY run_at ASC, created_at ASC
				LIMIT 1
			)
			RETURNING `+jobColumns, ts, workerID, ts, ts))
		return err
	})
	return j, err
}

func (s *Store) MarkJobDone(ctx context.Context, id string) error {
	return s.execJob(ctx, "jobs.mark_done", `
		UPDATE jobs
		SET status = 'done', locked_at = NULL, locked_by = NULL, last_error = NULL, updated_at = ?
		WHERE id = ?`, toMillis(now()), id)
}

func (s *Store) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return s.execJob(ctx, "jobs.mark_failed", `
		UPDATE jobs
		SET status = 'failed', attempts = attempts + 1, locked_at = NULL, locked_by = NULL,
		    last_error = ?, updated_at = ?
		WHERE id = ?`, errMsg, toMillis(now()), id)
}

func (s *Store) RescheduleJob(ctx context.Context, id string, runAt time.Time, errMsg string) error {
	return s.execJob(ctx, "jobs.reschedule", `
		UPDATE jobs
		SET status = 'pending', attempts = attempts + 1, run_at = ?, locked_at = NULL,
		    locked_by = NULL, last_error = ?, updated_at = ?
		WHERE id = ?`, toMillis(runAt), errMsg, toMillis(now()), id)
}

func (s *Store) RequeueStaleJobs(ctx context.Context, lockTTL time.Duration) (int64, error) {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}

	var rows int64
	err := s.observe("jobs.requeue_stale", func() error {
		res, err := s.db.ExecContext(ctx, `
			UPDATE jobs
			SET status = 'pending', locked_at = NULL, locked_by = NULL, updated_at = ?
			WHERE status = 'processing'
			  AND locked_at IS NOT NULL
			  AND locked_at < ?`, toMillis(now()), toMillis(now().Add(-lockTTL)))
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		return err
	})

	return rows, err
}

func (s *Store) execJob(ctx context.Context, op, query string, args ...any) error {
	var res sql.Result

	err := s.observe(op, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return job.ErrJobNotFound
	}
	return nil
}
