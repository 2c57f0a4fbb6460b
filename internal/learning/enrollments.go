package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/learnhub/internal/actorctx"
	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/domain/progress"
	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/repo"
)

type Enrollments struct {
	store   repo.Store
	catalog *Catalog
	log     *slog.Logger
}

func NewEnrollments(store repo.Store, catalog *Catalog, log *slog.Logger) *Enrollments {
	return &Enrollments{store: store, catalog: catalog, log: loggerOrDefault(log)}
}

// Enroll records userID as a student of courseID.
//
// The enrollment insert is the first write and the commit point: the
// unique (user, course) key turns the loser of a concurrent duplicate into
// enrollment.ErrAlreadyEnrolled before it can touch the counter. The
// counter bump, the progress record and the welcome job ride in the same
// transaction, so a reader sees all of them or none.
func (s *Enrollments) Enroll(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment

	err := s.store.WithinTx(ctx, func(tx repo.Tx) error {
		c, err := tx.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if !c.IsPublished {
			return course.ErrNotFound
		}

		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}

		enr = enrollment.New(userID, courseID)
		if err := tx.InsertEnrollment(ctx, enr); err != nil {
			return err
		}

		if err := tx.IncrementStudents(ctx, courseID, 1); err != nil {
			return fmt.Errorf("increment students: %w", err)
		}

		if err := tx.InsertProgress(ctx, progress.New(userID, courseID)); err != nil {
			return fmt.Errorf("create progress: %w", err)
		}

		payload, err := jobs.EncodePayload(jobs.JobEnrollmentWelcome, jobs.EnrollmentWelcomePayload{
			EnrollmentID: enr.ID,
			UserID:       userID,
			CourseID:     courseID,
			RequestID:    actorctx.RequestIDFrom(ctx),
		})
		if err != nil {
			return err
		}

		key := jobs.WelcomeIdempotencyKey(enr.ID)
		if _, err := tx.EnqueueJob(ctx, job.CreateRequest{
			Type:           jobs.JobEnrollmentWelcome.String(),
			Payload:        payload,
			IdempotencyKey: &key,
		}); err != nil {
			return fmt.Errorf("enqueue welcome: %w", err)
		}

		return nil
	})
	if err != nil {
		return enrollment.Enrollment{}, err
	}

	s.catalog.Invalidate(ctx, courseID)
	s.log.InfoContext(ctx, "enrolled", "course_id", courseID, "enrollment_id", enr.ID)

	return enr, nil
}
