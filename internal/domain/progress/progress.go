package progress

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("progress not found")
	ErrLessonNotFound = errors.New("lesson not found")
)

type LessonProgress struct {
	LessonID    string     `json:"lessonId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Progress struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	CourseID        string           `json:"courseId"`
	LessonProgress  []LessonProgress `json:"lessonProgress"`
	OverallProgress int              `json:"overallProgress"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type MarkLessonRequest struct {
	LessonID  string `json:"lessonId" binding:"required"`
	Completed *bool  `json:"completed" binding:"required"`
}

func New(userID, courseID string) Progress {
	now := time.Now().UTC()
	return Progress{
		ID:             uuid.NewString(),
		UserID:         userID,
		CourseID:       courseID,
		LessonProgress: []LessonProgress{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Overall is the rounded completion percentage, clamped to [0,100].
func Overall(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
