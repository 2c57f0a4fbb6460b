package postgres

import (
	"context"

	"github.com/geocoder89/learnhub/internal/domain/progress"
)

func (t *tx) InsertProgress(ctx context.Context, p progress.Progress) error {
	return t.s.observe("progress.insert", func() error {
		_, err := t.q.Exec(ctx, `
			INSERT INTO progress (id, user_id, course_id, overall_progress, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			p.ID, p.UserID, p.CourseID, p.OverallProgress, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
}

func (t *tx) LockProgress(ctx context.Context, userID, courseID string) (p progress.Progress, err error) {
	err = t.s.observe("progress.lock", func() error {
		return t.q.QueryRow(ctx, `
			SELECT id, user_id, course_id, overall_progress, created_at, updated_at
			FROM progress
			WHERE user_id = $1 AND course_id = $2
			FOR UPDATE`, userID, courseID,
		).Scan(&p.ID, &p.UserID, &p.CourseID, &p.OverallProgress, &p.CreatedAt, &p.UpdatedAt)
	})

	if isNoRows(err) {
		return progress.Progress{}, progress.ErrNotFound
	}
	return p, err
}

func (t *tx) UpsertLessonProgress(ctx context.Context, progressID string, lp progress.LessonProgress) error {
	return t.s.observe("progress.upsert_lesson", func() error {
		_, err := t.q.Exec(ctx, `
			INSERT INTO lesson_progress (progress_id, lesson_id, completed, completed_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (progress_id, lesson_id)
			DO UPDATE SET completed = EXCLUDED.completed, completed_at = EXCLUDED.completed_at`,
			progressID, lp.LessonID, lp.Completed, lp.CompletedAt,
		)
		return err
	})
}

func (t *tx) CountCompletedLessons(ctx context.Context, progressID string) (n int, err error) {
	err = t.s.observe("progress.count_completed", func() error {
		return t.q.QueryRow(ctx, `
			SELECT COUNT(*) FROM lesson_progress
			WHERE progress_id = $1 AND completed`, progressID,
		).Scan(&n)
	})
	return n, err
}

func (t *tx) SetOverallProgress(ctx context.Context, progressID string, pct int) error {
	return t.s.observe("progress.set_overall", func() error {
		_, err := t.q.Exec(ctx, `
			UPDATE progress SET overall_progress = $2, updated_at = NOW()
			WHERE id = $1`, progressID, pct)
		return err
	})
}

func (s *Store) GetProgress(ctx context.Context, userID, courseID string) (progress.Progress, error) {
	var p progress.Progress

	err := s.observe("progress.get", func() error {
		return s.pool.QueryRow(ctx, `
			SELECT id, user_id, course_id, overall_progress, created_at, updated_at
			FROM progress
			WHERE user_id = $1 AND course_id = $2`, userID, courseID,
		).Scan(&p.ID, &p.UserID, &p.CourseID, &p.OverallProgress, &p.CreatedAt, &p.UpdatedAt)
	})
	if isNoRows(err) {
		return progress.Progress{}, progress.ErrNotFound
	}
	if err != nil {
		return progress.Progress{}, err
	}

	p.LessonProgress = []progress.LessonProgress{}
	err = s.observe("progress.list_lessons", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT lesson_id, completed, completed_at
			FROM lesson_progress
			WHERE progress_id = $1
			ORDER BY lesson_id`, p.ID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var lp progress.LessonProgress
			if err := rows.Scan(&lp.LessonID, &lp.Completed, &lp.CompletedAt); err != nil {
				return err
			}
			p.LessonProgress = append(p.LessonProgress, lp)
		}
		return rows.Err()
	})

	return p, err
}
