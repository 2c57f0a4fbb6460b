package learning

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/geocoder89/learnhub/internal/repo/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "learnhub.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func seedUser(t *testing.T, s repo.Store, name string) user.User {
	t.Helper()

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Name:         name,
		Role:         user.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

var courseClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// seedCourse inserts a published programming course; each call is one
// minute newer than the last so ordering is deterministic.
func seedCourse(t *testing.T, s repo.Store, mutate func(*course.Course)) course.Course {
	t.Helper()

	courseClock = courseClock.Add(time.Minute)
	c := course.Course{
		ID:               uuid.NewString(),
		Title:            "Course " + courseClock.Format("15:04"),
		Description:      "A course",
		Instructor:       "Jane Doe",
		Category:         course.CategoryProgramming,
		Level:            course.LevelBeginner,
		Price:            50,
		Lessons:          []course.Lesson{},
		Requirements:     []string{},
		WhatYouWillLearn: []string{},
		IsPublished:      true,
		CreatedAt:        courseClock,
		UpdatedAt:        courseClock,
	}
	if mutate != nil {
		mutate(&c)
	}

	require.NoError(t, s.CreateCourse(context.Background(), c))
	return c
}

func countEnrollments(t *testing.T, s repo.Store, courseID string) int {
	t.Helper()

	var n int
	require.NoError(t, s.WithinTx(context.Background(), func(tx repo.Tx) error {
		var err error
		n, err = tx.CountEnrollments(context.Background(), courseID)
		return err
	}))
	return n
}

func ptr[T any](v T) *T { return &v }
