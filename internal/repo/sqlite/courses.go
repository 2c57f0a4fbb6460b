package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geocoder89/learnhub/internal/domain/course"
)

const courseListColumns = `id, title, description, instructor, category, level,
	price, original_price, duration, image, rating, reviews, students,
	requirements, what_you_will_learn, is_published, created_at, updated_at`

const courseColumns = courseListColumns + `, lessons`

// courseRow holds the raw column values shared by every course query.
type courseRow struct {
	c                    course.Course
	category, level      string
	requirements, what   string
	lessons              string
	published            int
	createdAt, updatedAt int64
}

func (r *courseRow) dest(withLessons bool) []any {
	c := &r.c
	d := []any{
		&c.ID, &c.Title, &c.Description, &c.Instructor, &r.category, &r.level,
		&c.Price, &c.OriginalPrice, &c.Duration, &c.Image, &c.Rating, &c.Reviews, &c.Students,
		&r.requirements, &r.what, &r.published, &r.createdAt, &r.updatedAt,
	}
	if withLessons {
		d = append(d, &r.lessons)
	}
	return d
}

func (r *courseRow) course(withLessons bool) (course.Course, error) {
	c := r.c
	c.Category = course.Category(r.category)
	c.Level = course.Level(r.level)
	c.IsPublished = r.published != 0
	c.CreatedAt = fromMillis(r.createdAt)
	c.UpdatedAt = fromMillis(r.updatedAt)

	if err := json.Unmarshal([]byte(r.requirements), &c.Requirements); err != nil {
		return course.Course{}, fmt.Errorf("decode requirements: %w", err)
	}
	if err := json.Unmarshal([]byte(r.what), &c.WhatYouWillLearn); err != nil {
		return course.Course{}, fmt.Errorf("decode whatYouWillLearn: %w", err)
	}
	if withLessons {
		if err := json.Unmarshal([]byte(r.lessons), &c.Lessons); err != nil {
			return course.Course{}, fmt.Errorf("decode lessons: %w", err)
		}
		if c.Lessons == nil {
			c.Lessons = []course.Lesson{}
		}
	}
	return c, nil
}

func scanCourse(row rowScanner, withLessons bool) (course.Course, error) {
	var r courseRow
	if err := row.Scan(r.dest(withLessons)...); err != nil {
		if isNoRows(err) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}
	return r.course(withLessons)
}

func (s *Store) CreateCourse(ctx context.Context, c course.Course) error {
	lessons, err := json.Marshal(nonNilLessons(c.Lessons))
	if err != nil {
		return err
	}
	requirements, err := json.Marshal(nonNilStrings(c.Requirements))
	if err != nil {
		return err
	}
	what, err := json.Marshal(nonNilStrings(c.WhatYouWillLearn))
	if err != nil {
		return err
	}

	return s.observe("courses.create", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO courses (id, title, description, instructor, category, level,
				price, original_price, duration, image, rating, reviews, students,
				lessons, requirements, what_you_will_learn, is_published, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			c.ID, c.Title, c.Description, c.Instructor, string(c.Category), string(c.Level),
			c.Price, c.OriginalPrice, c.Duration, c.Image, c.Rating, c.Reviews, c.Students,
			string(lessons), string(requirements), string(what), boolToInt(c.IsPublished),
			toMillis(c.CreatedAt), toMillis(c.UpdatedAt),
		)
		return err
	})
}

func (s *Store) GetCourse(ctx context.Context, id string) (c course.Course, err error) {
	err = s.observe("courses.get", func() error {
		c, err = scanCourse(s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id), true)
		return err
	})
	return c, err
}

func (s *Store) FindCourses(ctx context.Context, f course.ListFilter) ([]course.Course, error) {
	var (
		conds = []string{"is_published = 1"}
		args  []any
	)

	if c := f.CategoryFilter(); c != "" {
		conds = append(conds, "category = ?")
		args = append(args, c)
	}

	if l := f.LevelFilter(); l != "" {
		conds = append(conds, "level = ?")
		args = append(args, l)
	}

	if q := f.SearchTerm(); q != "" {
		p := course.LikePattern(q)
		conds = append(conds, `(golower(title) LIKE ? ESCAPE '\' OR golower(description) LIKE ? ESCAPE '\' OR golower(instructor) LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}

	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}

	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}

	q := `SELECT ` + courseListColumns + ` FROM courses WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC`

	var rows *sql.Rows
	err := s.observe("courses.find", func() error {
		var qerr error
		rows, qerr = s.db.QueryContext(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]course.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows, false)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return out, rows.Err()
}

func (s *Store) ListCourseIDs(ctx context.Context) ([]string, error) {
	var ids []string

	err := s.observe("courses.list_ids", func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT id FROM courses ORDER BY created_at`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return rows.Err()
	})

	return ids, err
}

func (s *Store) CountCourses(ctx context.Context) (n int, err error) {
	err = s.observe("courses.count", func() error {
		return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	})
	return n, err
}

func (t *tx) GetCourse(ctx context.Context, id string) (c course.Course, err error) {
	err = t.s.observe("courses.get_tx", func() error {
		c, err = scanCourse(t.q.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id), true)
		return err
	})
	return c, err
}

// LockCourse only checks existence: the immediate transaction already
// holds the database write lock.
func (t *tx) LockCourse(ctx context.Context, id string) error {
	return t.s.observe("courses.lock", func() error {
		var got string
		err := t.q.QueryRowContext(ctx, `SELECT id FROM courses WHERE id = ?`, id).Scan(&got)
		if isNoRows(err) {
			return course.ErrNotFound
		}
		return err
	})
}

func (t *tx) IncrementStudents(ctx context.Context, courseID string, delta int) error {
	return t.s.observe("courses.increment_students", func() error {
		res, err := t.q.ExecContext(ctx, `
			UPDATE courses SET students = students + ?, updated_at = ?
			WHERE id = ?`, delta, toMillis(now()), courseID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (t *tx) SetStudents(ctx context.Context, courseID string, students int) error {
	return t.s.observe("courses.set_students", func() error {
		_, err := t.q.ExecContext(ctx, `
			UPDATE courses SET students = ?, updated_at = ?
			WHERE id = ?`, students, toMillis(now()), courseID)
		return err
	})
}

func (t *tx) SetRating(ctx context.Context, courseID string, rating float64, reviews int) error {
	return t.s.observe("courses.set_rating", func() error {
		_, err := t.q.ExecContext(ctx, `
			UPDATE courses SET rating = ?, reviews = ?, updated_at = ?
			WHERE id = ?`, rating, reviews, toMillis(now()), courseID)
		return err
	})
}

func nonNilLessons(l []course.Lesson) []course.Lesson {
	if l == nil {
		return []course.Lesson{}
	}
	return l
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
