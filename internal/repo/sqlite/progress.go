package sqlite

import (
	"context"
	"database/sql"

	"github.com/geocoder89/learnhub/internal/domain/progress"
)

func (t *tx) InsertProgress(ctx context.Context, p progress.Progress) error {
	return t.s.observe("progress.insert", func() error {
		_, err := t.q.ExecContext(ctx, `
			INSERT INTO progress (id, user_id, course_id, overall_progress, created_at, updated_at)
			VALUES (?,?,?,?,?,?)`,
			p.ID, p.UserID, p.CourseID, p.OverallProgress, toMillis(p.CreatedAt), toMillis(p.UpdatedAt),
		)
		return err
	})
}

func scanProgress(row rowScanner) (progress.Progress, error) {
	var (
		p                    progress.Progress
		createdAt, updatedAt int64
	)

	err := row.Scan(&p.ID, &p.UserID, &p.CourseID, &p.OverallProgress, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return progress.Progress{}, progress.ErrNotFound
		}
		return progress.Progress{}, err
	}

	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}

func (t *tx) LockProgress(ctx context.Context, userID, courseID string) (p progress.Progress, err error) {
	err = t.s.observe("progress.lock", func() error {
		p, err = scanProgress(t.q.QueryRowContext(ctx, `
			SELECT id, user_id, course_id, overall_progress, created_at, updated_at
			FROM progress
			WHERE user_id = ? AND course_id = ?`, userID, courseID))
		return err
	})
	return p, err
}

func (t *tx) UpsertLessonProgress(ctx context.Context, progressID string, lp progress.LessonProgress) error {
	return t.s.observe("progress.upsert_lesson", func() error {
		_, err := t.q.ExecContext(ctx, `
			INSERT INTO lesson_progress (progress_id, lesson_id, completed, completed_at)
			VALUES (?,?,?,?)
			ON CONFLICT (progress_id, lesson_id)
			DO UPDATE SET completed = excluded.completed, completed_at = excluded.completed_at`,
			progressID, lp.LessonID, boolToInt(lp.Completed), nullMillis(lp.CompletedAt),
		)
		return err
	})
}

func (t *tx) CountCompletedLessons(ctx context.Context, progressID string) (n int, err error) {
	err = t.s.observe("progress.count_completed", func() error {
		return t.q.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM lesson_progress
			WHERE progress_id = ? AND completed = 1`, progressID,
		).Scan(&n)
	})
	return n, err
}

func (t *tx) SetOverallProgress(ctx context.Context, progressID string, pct int) error {
	return t.s.observe("progress.set_overall", func() error {
		_, err := t.q.ExecContext(ctx, `
			UPDATE progress SET overall_progress = ?, updated_at = ?
			WHERE id = ?`, pct, toMillis(now()), progressID)
		return err
	})
}

func (s *Store) GetProgress(ctx context.Context, userID, courseID string) (p progress.Progress, err error) {
	err = s.observe("progress.get", func() error {
		p, err = scanProgress(s.db.QueryRowContext(ctx, `
			SELECT id, user_id, course_id, overall_progress, created_at, updated_at
			FROM progress
			WHERE user_id = ? AND course_id = ?`, userID, courseID))
		return err
	})
	if err != nil {
		return progress.Progress{}, err
	}

	p.LessonProgress = []progress.LessonProgress{}
	err = s.observe("progress.list_lessons", func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT lesson_id, completed, completed_at
			FROM lesson_progress
			WHERE progress_id = ?
			ORDER BY lesson_id`, p.ID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				lp          progress.LessonProgress
				completed   int
				completedAt sql.NullInt64
			)
			if err := rows.Scan(&lp.LessonID, &completed, &completedAt); err != nil {
				return err
			}
			lp.Completed = completed != 0
			lp.CompletedAt = fromNullMillis(completedAt)
			p.LessonProgress = append(p.LessonProgress, lp)
		}
		return rows.Err()
	})

	return p, err
}
