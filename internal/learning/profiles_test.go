package learning

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileComposesEnrolledCourses(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	enrollments := NewEnrollments(s, NewCatalog(s, nil, nil, nil), nil)
	profiles := NewProfiles(s)

	u := seedUser(t, s, "Ada")
	c1 := seedCourse(t, s, func(c *course.Course) { c.Title = "First"; c.Image = "first.png" })
	c2 := seedCourse(t, s, func(c *course.Course) {
		c.Title = "Second"
		c.Lessons = []course.Lesson{{ID: "l1", Title: "Only lesson"}}
	})
	seedCourse(t, s, func(c *course.Course) { c.Title = "Not enrolled" })

	_, err := enrollments.Enroll(ctx, u.ID, c1.ID)
	require.NoError(t, err)
	_, err = enrollments.Enroll(ctx, u.ID, c2.ID)
	require.NoError(t, err)

	enrolled, err := profiles.EnrolledCourses(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 2)

	byTitle := map[string]int{}
	for _, ec := range enrolled {
		byTitle[ec.Title] = len(ec.Lessons)
		assert.Equal(t, 0, ec.Progress)
		assert.False(t, ec.EnrolledAt.IsZero())
	}
	assert.Equal(t, map[string]int{"First": 0, "Second": 1}, byTitle)

	view, err := profiles.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", view.Name)
	require.Len(t, view.EnrolledCourses, 2)

	var first course.Summary
	for _, sm := range view.EnrolledCourses {
		if sm.CourseID == c1.ID {
			first = sm
		}
	}
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "first.png", first.Image)
	assert.Equal(t, "Jane Doe", first.Instructor)
}

func TestProfileWithoutEnrollments(t *testing.T) {
	s := newTestStore(t)
	u := seedUser(t, s, "Ada")

	view, err := NewProfiles(s).Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, view.EnrolledCourses)
	assert.Empty(t, view.EnrolledCourses)
}

func TestProfileUpdateMerges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	profiles := NewProfiles(s)
	u := seedUser(t, s, "Ada")

	_, err := profiles.Update(ctx, u.ID, user.UpdateProfileRequest{
		Profile: &user.ProfilePatch{Bio: ptr("hello"), Location: ptr("London")},
	})
	require.NoError(t, err)

	updated, err := profiles.Update(ctx, u.ID, user.UpdateProfileRequest{
		Name:    "Ada Lovelace",
		Profile: &user.ProfilePatch{Bio: ptr("updated")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, "updated", stored.Profile.Bio)
	assert.Equal(t, "London", stored.Profile.Location)

	_, err = profiles.Update(ctx, "missing", user.UpdateProfileRequest{Name: "x"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestProfileConcurrentUpdatesToDifferentFieldsAllLand(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	profiles := NewProfiles(s)
	u := seedUser(t, s, "Ada")

	patches := []user.ProfilePatch{
		{Bio: ptr("bio")},
		{Avatar: ptr("avatar.png")},
		{Phone: ptr("555-0100")},
		{DateOfBirth: ptr("1815-12-10")},
		{Location: ptr("London")},
	}

	var wg sync.WaitGroup
	for round := 0; round < 4; round++ {
		for _, patch := range patches {
			wg.Add(1)
			go func(patch user.ProfilePatch) {
				defer wg.Done()
				_, err := profiles.Update(ctx, u.ID, user.UpdateProfileRequest{Profile: &patch})
				assert.NoError(t, err)
			}(patch)
		}
	}
	wg.Wait()

	stored, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Profile{
		Bio:         "bio",
		Avatar:      "avatar.png",
		Phone:       "555-0100",
		DateOfBirth: "1815-12-10",
		Location:    "London",
	}, stored.Profile)
	assert.Equal(t, "Ada", stored.Name)
}
