package enrollment

import (
	"errors"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/google/uuid"
)

var (
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
)

type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Progress   int       `json:"progress"`
}

// EnrolledCourse is a full course joined with the caller's enrollment.
type EnrolledCourse struct {
	course.Course
	EnrolledAt time.Time `json:"enrolledAt"`
	Progress   int       `json:"progress"`
}

func New(userID, courseID string) Enrollment {
	return Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
		Progress:   0,
	}
}
