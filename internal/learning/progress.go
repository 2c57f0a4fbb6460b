package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/progress"
	"github.com/geocoder89/learnhub/internal/repo"
)

type Progress struct {
	store repo.Store
	log   *slog.Logger
}

func NewProgress(store repo.Store, log *slog.Logger) *Progress {
	return &Progress{store: store, log: loggerOrDefault(log)}
}

// Get returns the caller's progress for a course they are enrolled in.
func (p *Progress) Get(ctx context.Context, userID, courseID string) (progress.Progress, error) {
	pr, err := p.store.GetProgress(ctx, userID, courseID)
	if errors.Is(err, progress.ErrNotFound) {
		return progress.Progress{}, enrollment.ErrNotEnrolled
	}
	return pr, err
}

// MarkLesson sets one lesson's completion flag and recomputes the overall
// percentage on both the progress record and the enrollment.
func (p *Progress) MarkLesson(ctx context.Context, userID, courseID, lessonID string, completed bool) (progress.Progress, error) {
	err := p.store.WithinTx(ctx, func(tx repo.Tx) error {
		c, err := tx.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}

		if _, err := tx.GetEnrollment(ctx, userID, courseID); err != nil {
			return err
		}

		if !c.HasLesson(lessonID) {
			return progress.ErrLessonNotFound
		}

		pr, err := tx.LockProgress(ctx, userID, courseID)
		if errors.Is(err, progress.ErrNotFound) {
			return enrollment.ErrNotEnrolled
		}
		if err != nil {
			return err
		}

		lp := progress.LessonProgress{LessonID: lessonID, Completed: completed}
		if completed {
			now := time.Now().UTC()
			lp.CompletedAt = &now
		}

		if err := tx.UpsertLessonProgress(ctx, pr.ID, lp); err != nil {
			return fmt.Errorf("upsert lesson progress: %w", err)
		}

		done, err := tx.CountCompletedLessons(ctx, pr.ID)
		if err != nil {
			return err
		}

		pct := progress.Overall(done, len(c.Lessons))
		if err := tx.SetOverallProgress(ctx, pr.ID, pct); err != nil {
			return err
		}
		return tx.SetEnrollmentProgress(ctx, userID, courseID, pct)
	})
	if err != nil {
		return progress.Progress{}, err
	}

	p.log.InfoContext(ctx, "lesson progress updated",
		"course_id", courseID, "lesson_id", lessonID, "completed", completed)

	return p.Get(ctx, userID, courseID)
}
