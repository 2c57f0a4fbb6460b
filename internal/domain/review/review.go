package review

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicate     = errors.New("you have already reviewed this course")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyComment  = errors.New("comment is required")
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// WithAuthor is a review joined with its reviewer's display fields.
type WithAuthor struct {
	Review
	User Author `json:"user"`
}

// Rating is a pointer so a missing field fails binding instead of
// decoding as zero and being reported as an out-of-range value.
type SubmitRequest struct {
	Rating  *int   `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Validate checks rating before comment.
func Validate(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if strings.TrimSpace(comment) == "" {
		return ErrEmptyComment
	}
	return nil
}

func New(userID, courseID string, rating int, comment string) Review {
	return Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now().UTC(),
	}
}

// AverageRating returns sum/count rounded to one decimal, halves away from
// zero. Integer arithmetic keeps 4.25 at 4.3 regardless of float error.
func AverageRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	tenths := (20*sum + count) / (2 * count)
	return float64(tenths) / 10
}
