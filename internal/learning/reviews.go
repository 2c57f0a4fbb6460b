package learning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/repo"
)

type Reviews struct {
	store   repo.Store
	catalog *Catalog
	log     *slog.Logger
}

func NewReviews(store repo.Store, catalog *Catalog, log *slog.Logger) *Reviews {
	return &Reviews{store: store, catalog: catalog, log: loggerOrDefault(log)}
}

// Submit stores one review per (user, course) and recomputes the course's
// rating and review count from the complete review set.
//
// The course row lock is taken before the insert, so submissions for the
// same course aggregate one at a time and each aggregate includes every
// review committed before it.
func (s *Reviews) Submit(ctx context.Context, userID, courseID string, rating int, comment string) (review.Review, error) {
	if err := review.Validate(rating, comment); err != nil {
		return review.Review{}, err
	}

	r := review.New(userID, courseID, rating, comment)

	var avg float64
	var count int

	err := s.store.WithinTx(ctx, func(tx repo.Tx) error {
		if err := tx.LockCourse(ctx, courseID); err != nil {
			return err
		}

		if _, err := tx.GetUser(ctx, userID); err != nil {
			return err
		}

		if err := tx.InsertReview(ctx, r); err != nil {
			return err
		}

		sum, n, err := tx.RatingStats(ctx, courseID)
		if err != nil {
			return fmt.Errorf("rating stats: %w", err)
		}

		avg, count = review.AverageRating(sum, n), n
		return tx.SetRating(ctx, courseID, avg, count)
	})
	if err != nil {
		return review.Review{}, err
	}

	s.catalog.Invalidate(ctx, courseID)
	s.log.InfoContext(ctx, "review submitted",
		"course_id", courseID, "rating", rating, "course_rating", avg, "course_reviews", count)

	return r, nil
}

// List returns the course's reviews newest first with reviewer name and
// avatar. An unknown course simply has no reviews.
func (s *Reviews) List(ctx context.Context, courseID string) ([]review.WithAuthor, error) {
	out, err := s.store.ListReviews(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}
