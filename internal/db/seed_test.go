package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/repo/sqlite"
	"github.com/geocoder89/learnhub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "seed.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeedCoursesOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	n, err := SeedCourses(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = SeedCourses(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.FindCourses(ctx, course.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 6)

	for _, c := range all {
		assert.Zero(t, c.Students, c.Title)
		assert.Zero(t, c.Reviews, c.Title)
		assert.Zero(t, c.Rating, c.Title)
	}

	design, err := s.FindCourses(ctx, course.ListFilter{Category: ptr("design")})
	require.NoError(t, err)
	assert.Len(t, design, 2)
}

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, EnsureAdminUser(ctx, s, config.Config{}))

	cfg := config.Config{AdminEmail: "Admin@LearnHub.dev", AdminPassword: "sup3rsecret", AdminName: "Root"}
	require.NoError(t, EnsureAdminUser(ctx, s, cfg))
	require.NoError(t, EnsureAdminUser(ctx, s, cfg))

	u, err := s.GetUserByEmail(ctx, "admin@learnhub.dev")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "Root", u.Name)
	assert.NoError(t, security.CheckPassword(u.PasswordHash, "sup3rsecret"))
}

func ptr[T any](v T) *T { return &v }
