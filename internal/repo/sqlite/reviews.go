package sqlite

import (
	"context"
	"database/sql"

	"github.com/geocoder89/learnhub/internal/domain/review"
)

func (t *tx) InsertReview(ctx context.Context, r review.Review) error {
	err := t.s.observe("reviews.insert", func() error {
		_, err := t.q.ExecContext(ctx, `
			INSERT INTO reviews (id, user_id, course_id, rating, comment, created_at)
			VALUES (?,?,?,?,?,?)`,
			r.ID, r.UserID, r.CourseID, r.Rating, r.Comment, toMillis(r.CreatedAt),
		)
		return err
	})

	if isUniqueViolation(err) {
		return review.ErrDuplicate
	}
	return err
}

func (t *tx) RatingStats(ctx context.Context, courseID string) (sum, count int, err error) {
	err = t.s.observe("reviews.stats", func() error {
		return t.q.QueryRowContext(ctx, `
			SELECT COALESCE(SUM(rating), 0), COUNT(*)
			FROM reviews WHERE course_id = ?`, courseID,
		).Scan(&sum, &count)
	})
	return sum, count, err
}

func (s *Store) ListReviews(ctx context.Context, courseID string) ([]review.WithAuthor, error) {
	var rows *sql.Rows

	err := s.observe("reviews.list", func() error {
		var qerr error
		rows, qerr = s.db.QueryContext(ctx, `
			SELECT r.id, r.user_id, r.course_id, r.rating, r.comment, r.created_at,
			       COALESCE(u.name, ''), COALESCE(u.avatar, '')
			FROM reviews r
			LEFT JOIN users u ON u.id = r.user_id
			WHERE r.course_id = ?
			ORDER BY r.created_at DESC, r.id DESC`, courseID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]review.WithAuthor, 0)
	for rows.Next() {
		var (
			r         review.WithAuthor
			createdAt int64
		)
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.CourseID, &r.Rating, &r.Comment, &createdAt,
			&r.User.Name, &r.User.Avatar,
		); err != nil {
			return nil, err
		}
		r.CreatedAt = fromMillis(createdAt)
		r.User.ID = r.UserID
		out = append(out, r)
	}

	return out, rows.Err()
}
