package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/geocoder89/learnhub/internal/actorctx"
	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/repo"
)

// Derived holds a course's server-computed fields.
type Derived struct {
	Students int     `json:"students"`
	Rating   float64 `json:"rating"`
	Reviews  int     `json:"reviews"`
}

// Reconciler recomputes derived course fields from the authoritative
// enrollment and review sets.
type Reconciler struct {
	store   repo.Store
	catalog *Catalog
	log     *slog.Logger
}

func NewReconciler(store repo.Store, catalog *Catalog, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, catalog: catalog, log: loggerOrDefault(log)}
}

func (r *Reconciler) Reconcile(ctx context.Context, courseID string) (Derived, error) {
	var d Derived

	err := r.store.WithinTx(ctx, func(tx repo.Tx) error {
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}

		students, err := tx.CountEnrollments(ctx, courseID)
		if err != nil {
			return err
		}

		sum, count, err := tx.RatingStats(ctx, courseID)
		if err != nil {
			return err
		}

		d = Derived{Students: students, Rating: review.AverageRating(sum, count), Reviews: count}

		if err := tx.SetStudents(ctx, courseID, d.Students); err != nil {
			return err
		}
		return tx.SetRating(ctx, courseID, d.Rating, d.Reviews)
	})
	if err != nil {
		return Derived{}, err
	}

	r.catalog.Invalidate(ctx, courseID)
	r.log.InfoContext(ctx, "course reconciled",
		"course_id", courseID, "students", d.Students, "rating", d.Rating, "reviews", d.Reviews)

	return d, nil
}

// Enqueue schedules a reconcile job for one course on behalf of actorID.
func (r *Reconciler) Enqueue(ctx context.Context, courseID, actorID string) (job.Job, error) {
	if _, err := r.store.GetCourse(ctx, courseID); err != nil {
		return job.Job{}, err
	}

	return r.enqueue(ctx, courseID, actorID, nil)
}

// EnqueueAll schedules a reconcile job for every course. The tick is part
// of the idempotency key so a schedule firing twice for the same tick
// enqueues once.
func (r *Reconciler) EnqueueAll(ctx context.Context, tick time.Time) (int, error) {
	ids, err := r.store.ListCourseIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list course ids: %w", err)
	}

	stamp := strconv.FormatInt(tick.UTC().Truncate(time.Minute).Unix(), 10)
	for _, id := range ids {
		key := "course:reconcile:" + id + ":" + stamp
		if _, err := r.enqueue(ctx, id, "", &key); err != nil {
			return 0, err
		}
	}

	return len(ids), nil
}

func (r *Reconciler) enqueue(ctx context.Context, courseID, actorID string, key *string) (job.Job, error) {
	payload, err := jobs.EncodePayload(jobs.JobCourseReconcile, jobs.CourseReconcilePayload{
		CourseID:  courseID,
		ActorID:   actorID,
		RequestID: actorctx.RequestIDFrom(ctx),
	})
	if err != nil {
		return job.Job{}, err
	}

	j, err := r.store.CreateJob(ctx, job.CreateRequest{
		Type:           jobs.JobCourseReconcile.String(),
		Payload:        payload,
		MaxAttempts:    5,
		IdempotencyKey: key,
	})
	if err != nil {
		return job.Job{}, fmt.Errorf("enqueue reconcile: %w", err)
	}
	return j, nil
}
