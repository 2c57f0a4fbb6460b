package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "store.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insertCourse(t *testing.T, s *Store, title string) course.Course {
	t.Helper()

	now := time.Now().UTC()
	c := course.Course{
		ID:               uuid.NewString(),
		Title:            title,
		Description:      "A course",
		Instructor:       "Jane Doe",
		Category:         course.CategoryDesign,
		Level:            course.LevelBeginner,
		Price:            20,
		Lessons:          []course.Lesson{},
		Requirements:     []string{},
		WhatYouWillLearn: []string{},
		IsPublished:      true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, s.CreateCourse(context.Background(), c))
	return c
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	s := openTestStore(t)
	c := insertCourse(t, s, "Panicky Course")

	func() {
		defer func() { _ = recover() }()
		_ = s.WithinTx(context.Background(), func(tx repo.Tx) error {
			if err := tx.IncrementStudents(context.Background(), c.ID, 1); err != nil {
				return err
			}
			panic("boom")
		})
	}()

	// the single connection must be free again
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := s.WithinTx(ctx, func(tx repo.Tx) error {
		got, err := tx.GetCourse(ctx, c.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 0, got.Students, "panicked write must not be committed")
		return nil
	})
	require.NoError(t, err)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	c := insertCourse(t, s, "Failing Course")
	errStop := errors.New("stop")

	err := s.WithinTx(context.Background(), func(tx repo.Tx) error {
		if err := tx.IncrementStudents(context.Background(), c.ID, 1); err != nil {
			return err
		}
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	got, err := s.GetCourse(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Students)
}

func TestFindCoursesSearchFoldsUnicode(t *testing.T) {
	s := openTestStore(t)
	want := insertCourse(t, s, "ÜBER Design")
	insertCourse(t, s, "Plain Design")

	for _, term := range []string{"über", "ÜBER", "Über"} {
		got, err := s.FindCourses(context.Background(), course.ListFilter{Search: &term})
		require.NoError(t, err)
		require.Len(t, got, 1, "search %q", term)
		assert.Equal(t, want.ID, got[0].ID)
	}
}
