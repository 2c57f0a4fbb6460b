package sqlite

import (
	"context"
	"database/sql"

	"github.com/geocoder89/learnhub/internal/domain/enrollment"
)

func (t *tx) InsertEnrollment(ctx context.Context, e enrollment.Enrollment) error {
	err := t.s.observe("enrollments.insert", func() error {
		_, err := t.q.ExecContext(ctx, `
			INSERT INTO enrollments (id, user_id, course_id, enrolled_at, progress)
			VALUES (?,?,?,?,?)`,
			e.ID, e.UserID, e.CourseID, toMillis(e.EnrolledAt), e.Progress,
		)
		return err
	})

	if isUniqueViolation(err) {
		return enrollment.ErrAlreadyEnrolled
	}
	return err
}

func (t *tx) GetEnrollment(ctx context.Context, userID, courseID string) (enrollment.Enrollment, error) {
	var (
		e          enrollment.Enrollment
		enrolledAt int64
	)

	err := t.s.observe("enrollments.get", func() error {
		return t.q.QueryRowContext(ctx, `
			SELECT id, user_id, course_id, enrolled_at, progress
			FROM enrollments
			WHERE user_id = ? AND course_id = ?`, userID, courseID,
		).Scan(&e.ID, &e.UserID, &e.CourseID, &enrolledAt, &e.Progress)
	})
	if isNoRows(err) {
		return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
	}
	if err != nil {
		return enrollment.Enrollment{}, err
	}

	e.EnrolledAt = fromMillis(enrolledAt)
	return e, nil
}

func (t *tx) SetEnrollmentProgress(ctx context.Context, userID, courseID string, pct int) error {
	return t.s.observe("enrollments.set_progress", func() error {
		res, err := t.q.ExecContext(ctx, `
			UPDATE enrollments SET progress = ?
			WHERE user_id = ? AND course_id = ?`, pct, userID, courseID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return enrollment.ErrNotEnrolled
		}
		return nil
	})
}

func (t *tx) CountEnrollments(ctx context.Context, courseID string) (n int, err error) {
	err = t.s.observe("enrollments.count", func() error {
		return t.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = ?`, courseID).Scan(&n)
	})
	return n, err
}

func (s *Store) ListEnrolledCourses(ctx context.Context, userID string) ([]enrollment.EnrolledCourse, error) {
	var rows *sql.Rows

	err := s.observe("enrollments.list_courses", func() error {
		var qerr error
		rows, qerr = s.db.QueryContext(ctx, `
			SELECT c.id, c.title, c.description, c.instructor, c.category, c.level,
			       c.price, c.original_price, c.duration, c.image, c.rating, c.reviews, c.students,
			       c.requirements, c.what_you_will_learn, c.is_published, c.created_at, c.updated_at,
			       c.lessons, e.enrolled_at, e.progress
			FROM enrollments e
			JOIN courses c ON c.id = e.course_id
			WHERE e.user_id = ?
			ORDER BY e.enrolled_at DESC, e.id DESC`, userID)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]enrollment.EnrolledCourse, 0)
	for rows.Next() {
		var (
			r          courseRow
			enrolledAt int64
			ec         enrollment.EnrolledCourse
		)

		dest := append(r.dest(true), &enrolledAt, &ec.Progress)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		c, err := r.course(true)
		if err != nil {
			return nil, err
		}

		ec.Course = c
		ec.EnrolledAt = fromMillis(enrolledAt)
		out = append(out, ec)
	}

	return out, rows.Err()
}
