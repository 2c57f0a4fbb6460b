package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/jobs"
	"github.com/geocoder89/learnhub/internal/learning"
	"github.com/geocoder89/learnhub/internal/notifications"
)

type WelcomeLookup interface {
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetCourse(ctx context.Context, id string) (course.Course, error)
}

// WelcomeHandler loads the enrolled user and course and sends the welcome
// notification. Missing rows fail the job permanently.
func WelcomeHandler(lookup WelcomeLookup, notifier notifications.Notifier) Handler {
	return func(ctx context.Context, payload any) error {
		p, ok := payload.(jobs.EnrollmentWelcomePayload)
		if !ok {
			return Permanent(jobs.ErrPayloadTypeMismatch)
		}

		u, err := lookup.GetUserByID(ctx, p.UserID)
		if errors.Is(err, user.ErrNotFound) {
			return Permanent(err)
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		c, err := lookup.GetCourse(ctx, p.CourseID)
		if errors.Is(err, course.ErrNotFound) {
			return Permanent(err)
		}
		if err != nil {
			return fmt.Errorf("load course: %w", err)
		}

		return notifier.SendEnrollmentWelcome(ctx, notifications.EnrollmentWelcomeInput{
			Email:        u.Email,
			Name:         u.Name,
			CourseID:     c.ID,
			CourseTitle:  c.Title,
			EnrollmentID: p.EnrollmentID,
		})
	}
}

type CourseReconciler interface {
	Reconcile(ctx context.Context, courseID string) (learning.Derived, error)
}

func ReconcileHandler(r CourseReconciler) Handler {
	return func(ctx context.Context, payload any) error {
		p, ok := payload.(jobs.CourseReconcilePayload)
		if !ok {
			return Permanent(jobs.ErrPayloadTypeMismatch)
		}

		_, err := r.Reconcile(ctx, p.CourseID)
		if errors.Is(err, course.ErrNotFound) {
			return Permanent(err)
		}
		return err
	}
}
