package learning

import (
	"context"
	"fmt"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/course"
	"github.com/geocoder89/learnhub/internal/domain/enrollment"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/repo"
)

// ProfileView is a user with a summary of every course they are enrolled in.
type ProfileView struct {
	user.User
	EnrolledCourses []course.Summary `json:"enrolledCourses"`
}

type Profiles struct {
	store repo.Store
}

func NewProfiles(store repo.Store) *Profiles {
	return &Profiles{store: store}
}

func (p *Profiles) Get(ctx context.Context, userID string) (ProfileView, error) {
	u, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	enrolled, err := p.EnrolledCourses(ctx, userID)
	if err != nil {
		return ProfileView{}, err
	}

	summaries := make([]course.Summary, 0, len(enrolled))
	for _, ec := range enrolled {
		summaries = append(summaries, course.Summary{
			CourseID:   ec.ID,
			Title:      ec.Title,
			Instructor: ec.Instructor,
			Image:      ec.Image,
			Rating:     ec.Rating,
			EnrolledAt: ec.EnrolledAt,
			Progress:   ec.Progress,
		})
	}

	return ProfileView{User: u, EnrolledCourses: summaries}, nil
}

// EnrolledCourses joins the user's enrollments with full course records.
// Enrollments whose course no longer resolves are left out.
func (p *Profiles) EnrolledCourses(ctx context.Context, userID string) ([]enrollment.EnrolledCourse, error) {
	out, err := p.store.ListEnrolledCourses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return out, nil
}

// Update replaces the name when one is given and merges profile fields.
// The merge happens in the store so concurrent updates to different fields
// all land.
func (p *Profiles) Update(ctx context.Context, userID string, req user.UpdateProfileRequest) (user.User, error) {
	name, patch := req.Changes()
	return p.store.UpdateProfile(ctx, userID, name, patch, time.Now().UTC())
}
