package learning

import (
	"context"
	"sync"
	"testing"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/review"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewAggregation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	c := seedCourse(t, s, nil)

	for _, rating := range []int{5, 4, 3} {
		u := seedUser(t, s, "reviewer")
		_, err := svc.Submit(ctx, u.ID, c.ID, rating, "solid course")
		require.NoError(t, err)
	}

	got, err := s.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 3, got.Reviews)

	u := seedUser(t, s, "late reviewer")
	_, err = svc.Submit(ctx, u.ID, c.ID, 5, "loved it")
	require.NoError(t, err)

	got, err = s.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.3, got.Rating)
	assert.Equal(t, 4, got.Reviews)
}

func TestReviewDuplicateIsRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	c := seedCourse(t, s, nil)
	u := seedUser(t, s, "Ada")

	_, err := svc.Submit(ctx, u.ID, c.ID, 4, "first")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, u.ID, c.ID, 1, "second")
	require.ErrorIs(t, err, review.ErrDuplicate)

	list, err := svc.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Comment)

	got, err := s.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Rating)
	assert.Equal(t, 1, got.Reviews)
}

func TestReviewConcurrentSubmissionsAreAllCounted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	c := seedCourse(t, s, nil)

	ratings := []int{5, 5, 4, 4, 3, 5, 2, 5, 4, 5}
	users := make([]user.User, len(ratings))
	for i := range ratings {
		users[i] = seedUser(t, s, "reviewer")
	}

	var wg sync.WaitGroup
	for i, rating := range ratings {
		wg.Add(1)
		go func(uid string, rating int) {
			defer wg.Done()
			_, err := svc.Submit(ctx, uid, c.ID, rating, "concurrent")
			assert.NoError(t, err)
		}(users[i].ID, rating)
	}
	wg.Wait()

	got, err := s.GetCourse(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, len(ratings), got.Reviews)
	assert.Equal(t, 4.2, got.Rating)
}

func TestReviewValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	u := seedUser(t, s, "Ada")
	c := seedCourse(t, s, nil)

	_, err := svc.Submit(ctx, u.ID, "missing", 0, "")
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = svc.Submit(ctx, u.ID, c.ID, 6, "too high")
	assert.ErrorIs(t, err, review.ErrInvalidRating)

	_, err = svc.Submit(ctx, u.ID, c.ID, 3, "   ")
	assert.ErrorIs(t, err, review.ErrEmptyComment)

	_, err = svc.Submit(ctx, u.ID, "missing", 3, "ok")
	assert.ErrorIs(t, err, course.ErrNotFound)
}

func TestReviewAllowedOnUnpublishedCourse(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	u := seedUser(t, s, "Ada")
	c := seedCourse(t, s, func(c *course.Course) { c.IsPublished = false })

	_, err := svc.Submit(ctx, u.ID, c.ID, 5, "early access")
	require.NoError(t, err)
}

func TestListReviewsNewestFirstWithAuthor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := NewReviews(s, NewCatalog(s, nil, nil, nil), nil)

	c := seedCourse(t, s, nil)
	first := seedUser(t, s, "First")
	second := seedUser(t, s, "Second")

	_, err := svc.Submit(ctx, first.ID, c.ID, 3, "older")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, second.ID, c.ID, 5, "newer")
	require.NoError(t, err)

	list, err := svc.List(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Same-millisecond inserts tie on created_at; both orders are newest
	// first by (created_at, id), so only check the join.
	names := map[string]string{list[0].User.Name: list[0].Comment, list[1].User.Name: list[1].Comment}
	assert.Equal(t, "older", names["First"])
	assert.Equal(t, "newer", names["Second"])
	assert.Equal(t, "", list[0].User.Avatar)
	assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))

	empty, err := svc.List(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
