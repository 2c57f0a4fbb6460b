package postgres

import (
	"context"

	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/jackc/pgx/v5"
)

func (t *tx) InsertReview(ctx context.Context, r review.Review) error {
	err := t.s.observe("reviews.insert", func() error {
		_, err := t.q.Exec(ctx, `
			INSERT INTO reviews (id, user_id, course_id, rating, comment, created_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			r.ID, r.UserID, r.CourseID, r.Rating, r.Comment, r.CreatedAt,
		)
		return err
	})

	if IsUniqueViolation(err) {
		return review.ErrDuplicate
	}
	return err
}

// RatingStats reads the full review set for the course. Callers hold the
// course row lock so the set cannot change underneath the aggregate.
func (t *tx) RatingStats(ctx context.Context, courseID string) (sum, count int, err error) {
	err = t.s.observe("reviews.stats", func() error {
		return t.q.QueryRow(ctx, `
			SELECT COALESCE(SUM(rating), 0), COUNT(*)
			FROM reviews WHERE course_id = $1`, courseID,
		).Scan(&sum, &count)
	})
	return sum, count, err
}

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]review.WithAuthor, error) {
	var rows pgx.Rows

	err := s.observe("reviews.list", func() error {
		var qerr error
		rows, qerr = s.pool.Query(ctx, `
			SELECT r.id, r.user_id, r.course_id, r.rating, r.comment, r.created_at,
			       COALESCE(u.name, ''), COALESCE(u.avatar, '')
			FROM reviews r
			LEFT JOIN users u ON u.id = r.user_id
			WHERE r.course_id = $1
			ORDER BY r.created_at DESC, r.id DESC`, courseID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]review.WithAuthor, 0)
	for rows.Next() {
		var r review.WithAuthor
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.CourseID, &r.Rating, &r.Comment, &r.CreatedAt,
			&r.User.Name, &r.User.Avatar,
		); err != nil {
			return nil, err
		}
		r.User.ID = r.UserID
		out = append(out, r)
	}

	return out, rows.Err()
}
