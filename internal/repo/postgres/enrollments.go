package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/jackc/pgx/v5"
)

// InsertEnrollment is the commit point of an enrollment: the unique
// (user_id, course_id) constraint decides which of two racing requests wins.
// The losing insert blocks until the winner commits, then gets 23505.
func (t *tx) InsertEnrollment(ctx context.Context, e enrollment.Enrollment) error {
	err := t.s.observe("enrollments.insert", func() error {
		_, err := t.q.Exec(ctx, `
			INSERT INTO enrollments (id, user_id, course_id, enrolled_at, progress)
			VALUES ($1,$2,$3,$4,$5)`,
			e.ID, e.UserID, e.CourseID, e.EnrolledAt, e.Progress,
		)
		return err
	})

	if IsUniqueViolation(err) {
		return enrollment.ErrAlreadyEnrolled
	}
	return err
}

func (t *tx) GetEnrollment(ctx context.Context, userID, courseID string) (e enrollment.Enrollment, err error) {
	err = t.s.observe("enrollments.get", func() error {
		return t.q.QueryRow(ctx, `
			SELECT id, user_id, course_id, enrolled_at, progress
			FROM enrollments
			WHERE user_id = $1 AND course_id = $2`, userID, courseID,
		).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.Progress)
	})

	if isNoRows(err) {
		return enrollment.Enrollment{}, enrollment.ErrNotEnrolled
	}
	return e, err
}

func (t *tx) SetEnrollmentProgress(ctx context.Context, userID, courseID string, pct int) error {
	return t.s.observe("enrollments.set_progress", func() error {
		tag, err := t.q.Exec(ctx, `
			UPDATE enrollments SET progress = $3
			WHERE user_id = $1 AND course_id = $2`, userID, courseID, pct)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return enrollment.ErrNotEnrolled
		}
		return nil
	})
}

func (t *tx) CountEnrollments(ctx context.Context, courseID string) (n int, err error) {
	err = t.s.observe("enrollments.count", func() error {
		return t.q.QueryRow(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID).Scan(&n)
	})
	return n, err
}

// ListEnrolledCourses joins enrollments to courses; enrollments whose course
// is gone drop out of the inner join.
func (s *Store) ListEnrolledCourses(ctx context.Context, userID string) ([]enrollment.EnrolledCourse, error) {
	var rows pgx.Rows

	err := s.observe("enrollments.list_courses", func() error {
		var qerr error
		rows, qerr = s.pool.Query(ctx, `
			SELECT c.id, c.title, c.description, c.instructor, c.category, c.level,
			       c.price, c.original_price, c.duration, c.image, c.rating, c.reviews, c.students,
			       c.requirements, c.what_you_will_learn, c.is_published, c.created_at, c.updated_at,
			       c.lessons, e.enrolled_at, e.progress
			FROM enrollments e
			JOIN courses c ON c.id = e.course_id
			WHERE e.user_id = $1
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
			ec                          enrollment.EnrolledCourse
			category, level             string
			requirements, what, lessons []byte
		)

		c := &ec.Course
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Instructor, &category, &level,
			&c.Price, &c.OriginalPrice, &c.Duration, &c.Image, &c.Rating, &c.Reviews, &c.Students,
			&requirements, &what, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt,
			&lessons, &ec.EnrolledAt, &ec.Progress,
		); err != nil {
			return nil, err
		}

		c.Category = course.Category(category)
		c.Level = course.Level(level)
		if err := decodeCourseJSON(c, requirements, what, lessons); err != nil {
			return nil, err
		}

		out = append(out, ec)
	}

	return out, rows.Err()
}

func decodeCourseJSON(c *course.Course, requirements, what, lessons []byte) error {
	if err := json.Unmarshal(requirements, &c.Requirements); err != nil {
		return fmt.Errorf("decode requirements: %w", err)
	}
	if err := json.Unmarshal(what, &c.WhatYouWillLearn); err != nil {
		return fmt.Errorf("decode whatYouWillLearn: %w", err)
	}
	if err := json.Unmarshal(lessons, &c.Lessons); err != nil {
		return fmt.Errorf("decode lessons: %w", err)
	}
	return nil
}
