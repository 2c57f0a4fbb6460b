// Package repo declares the storage contract shared by the Postgres and
// SQLite backends. Coordinators run multi-record writes through
// Store.WithinTx; everything else goes through the Store directly.
package repo

import (
	"context"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/job"
	"github.com/geocoder89/learnhub/internal/domain/progress"
	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/domain/user"
)

type Store interface {
	// WithinTx runs fn in one transaction. fn's error rolls back; a nil
	// return commits. fn must only use the Tx it is given.
	WithinTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close() error

	CreateUser(ctx context.Context, u user.User) error
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// UpdateProfile sets name and the non-nil patch fields in one statement
	// and returns the updated row.
	UpdateProfile(ctx context.Context, id string, name *string, patch user.ProfilePatch, at time.Time) (user.User, error)

	CreateCourse(ctx context.Context, c course.Course) error
	GetCourse(ctx context.Context, id string) (course.Course, error)
	FindCourses(ctx context.Context, f course.ListFilter) ([]course.Course, error)
	ListCourseIDs(ctx context.Context) ([]string, error)
	CountCourses(ctx context.Context) (int, error)

	ListEnrolledCourses(ctx context.Context, userID string) ([]enrollment.EnrolledCourse, error)
	ListReviews(ctx context.Context, courseID string) ([]review.WithAuthor, error)
	GetProgress(ctx context.Context, userID, courseID string) (progress.Progress, error)

	JobStore
}

// Tx is the write surface available inside WithinTx.
type Tx interface {
	GetUser(ctx context.Context, id string) (user.User, error)

	// GetCourse returns the course regardless of its published flag.
	GetCourse(ctx context.Context, id string) (course.Course, error)
	// LockCourse takes the row lock that serializes derived-field writes.
	LockCourse(ctx context.Context, id string) error
	IncrementStudents(ctx context.Context, courseID string, delta int) error
	SetStudents(ctx context.Context, courseID string, students int) error
	SetRating(ctx context.Context, courseID string, rating float64, reviews int) error

	// InsertEnrollment returns enrollment.ErrAlreadyEnrolled on a
	// (user, course) collision.
	InsertEnrollment(ctx context.Context, e enrollment.Enrollment) error
	GetEnrollment(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error)
	SetEnrollmentProgress(ctx context.Context, userID, courseID string, pct int) error
	CountEnrollments(ctx context.Context, courseID string) (int, error)

	InsertProgress(ctx context.Context, p progress.Progress) error
	// LockProgress returns the progress row (without lessons) locked for update.
	LockProgress(ctx context.Context, userID, courseID string) (progress.Progress, error)
	UpsertLessonProgress(ctx context.Context, progressID string, lp progress.LessonProgress) error
	CountCompletedLessons(ctx context.Context, progressID string) (int, error)
	SetOverallProgress(ctx context.Context, progressID string, pct int) error

	// InsertReview returns review.ErrDuplicate on a (user, course) collision.
	InsertReview(ctx context.Context, r review.Review) error
	RatingStats(ctx context.Context, courseID string) (sum, count int, err error)

	// EnqueueJob is a no-op returning the existing job when the
	// idempotency key is already taken.
	EnqueueJob(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// JobStore is the queue surface used by the worker and admin endpoints.
type JobStore interface {
	CreateJob(ctx context.Context, req job.CreateRequest) (job.Job, error)
	GetJob(ctx context.Context, id string) (job.Job, error)
	// ClaimNextJob returns job.ErrJobNotFound when nothing is runnable.
	ClaimNextJob(ctx context.Context, workerID string) (job.Job, error)
	MarkJobDone(ctx context.Context, id string) error
	MarkJobFailed(ctx context.Context, id string, errMsg string) error
	RescheduleJob(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleJobs(ctx context.Context, lockTTL time.Duration) (int64, error)
}
