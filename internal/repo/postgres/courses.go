package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/jackc/pgx/v5"
)

const courseListColumns = `id, title, description, instructor, category, level,
	price, original_price, duration, image, rating, reviews, students,
	requirements, what_you_will_learn, is_published, created_at, updated_at`

const courseColumns = courseListColumns + `, lessons`

func scanCourse(row pgx.Row, withLessons bool) (course.Course, error) {
	var (
		c                  course.Course
		category, level    string
		requirements, what []byte
		lessons            []byte
	)

	dest := []any{
		&c.ID, &c.Title, &c.Description, &c.Instructor, &category, &level,
		&c.Price, &c.OriginalPrice, &c.Duration, &c.Image, &c.Rating, &c.Reviews, &c.Students,
		&requirements, &what, &c.IsPublished, &c.CreatedAt, &c.UpdatedAt,
	}
	if withLessons {
		dest = append(dest, &lessons)
	}

	if err := row.Scan(dest...); err != nil {
		if isNoRows(err) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, err
	}

	c.Category = course.Category(category)
	c.Level = course.Level(level)

	if err := json.Unmarshal(requirements, &c.Requirements); err != nil {
		return course.Course{}, fmt.Errorf("decode requirements: %w", err)
	}
	if err := json.Unmarshal(what, &c.WhatYouWillLearn); err != nil {
		return course.Course{}, fmt.Errorf("decode whatYouWillLearn: %w", err)
	}
	if withLessons {
		if err := json.Unmarshal(lessons, &c.Lessons); err != nil {
			return course.Course{}, fmt.Errorf("decode lessons: %w", err)
		}
		if c.Lessons == nil {
			c.Lessons = []course.Lesson{}
		}
	}

	return c, nil
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
		_, err := s.pool.Exec(ctx, `
			INSERT INTO courses (id, title, description, instructor, category, level,
				price, original_price, duration, image, rating, reviews, students,
				lessons, requirements, what_you_will_learn, is_published, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
			c.ID, c.Title, c.Description, c.Instructor, string(c.Category), string(c.Level),
			c.Price, c.OriginalPrice, c.Duration, c.Image, c.Rating, c.Reviews, c.Students,
			string(lessons), string(requirements), string(what), c.IsPublished, c.CreatedAt, c.UpdatedAt,
		)
		return err
	})
}

// GetCourse returns the course with lessons, published or not.
func (s *Store) GetCourse(ctx context.Context, id string) (c course.Course, err error) {
	err = s.observe("courses.get", func() error {
		c, err = scanCourse(s.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id), true)
		return err
	})
	return c, err
}

func (s *Store) FindCourses(ctx context.Context, f course.ListFilter) ([]course.Course, error) {
	var (
		conds   = []string{"is_published = TRUE"}
		args    []any
		argsPos = 1
	)

	if c := f.CategoryFilter(); c != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPos))
		args = append(args, c)
		argsPos++
	}

	if l := f.LevelFilter(); l != "" {
		conds = append(conds, fmt.Sprintf("level = $%d", argsPos))
		args = append(args, l)
		argsPos++
	}

	if q := f.SearchTerm(); q != "" {
		conds = append(conds, fmt.Sprintf(
			`(title ILIKE $%[1]d ESCAPE '\' OR description ILIKE $%[1]d ESCAPE '\' OR instructor ILIKE $%[1]d ESCAPE '\')`,
			argsPos))
		args = append(args, course.LikePattern(q))
		argsPos++
	}

	if f.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price >= $%d", argsPos))
		args = append(args, *f.MinPrice)
		argsPos++
	}

	if f.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", argsPos))
		args = append(args, *f.MaxPrice)
		argsPos++
	}

	q := `SELECT ` + courseListColumns + ` FROM courses WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, id DESC`

	var rows pgx.Rows
	err := s.observe("courses.find", func() error {
		var qerr error
		rows, qerr = s.pool.Query(ctx, q, args...)
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
		rows, err := s.pool.Query(ctx, `SELECT id FROM courses ORDER BY created_at`)
		if err != nil {
			return err
		}
		ids, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})

	return ids, err
}

func (s *Store) CountCourses(ctx context.Context) (n int, err error) {
	err = s.observe("courses.count", func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n)
	})
	return n, err
}

func (t *tx) GetCourse(ctx context.Context, id string) (c course.Course, err error) {
	err = t.s.observe("courses.get_tx", func() error {
		c, err = scanCourse(t.q.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id), true)
		return err
	})
	return c, err
}

func (t *tx) LockCourse(ctx context.Context, id string) error {
	return t.s.observe("courses.lock", func() error {
		var got string
		err := t.q.QueryRow(ctx, `SELECT id FROM courses WHERE id = $1 FOR UPDATE`, id).Scan(&got)
		if isNoRows(err) {
			return course.ErrNotFound
		}
		return err
	})
}

// IncrementStudents is a single UPDATE so concurrent enrollments never
// lose an increment.
func (t *tx) IncrementStudents(ctx context.Context, courseID string, delta int) error {
	return t.s.observe("courses.increment_students", func() error {
		tag, err := t.q.Exec(ctx, `
			UPDATE courses SET students = students + $2, updated_at = NOW()
			WHERE id = $1`, courseID, delta)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (t *tx) SetStudents(ctx context.Context, courseID string, students int) error {
	return t.s.observe("courses.set_students", func() error {
		_, err := t.q.Exec(ctx, `
			UPDATE courses SET students = $2, updated_at = NOW()
			WHERE id = $1`, courseID, students)
		return err
	})
}

func (t *tx) SetRating(ctx context.Context, courseID string, rating float64, reviews int) error {
	return t.s.observe("courses.set_rating", func() error {
		_, err := t.q.Exec(ctx, `
			UPDATE courses SET rating = $2, reviews = $3, updated_at = NOW()
			WHERE id = $1`, courseID, rating, reviews)
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
