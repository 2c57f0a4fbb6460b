package notifications

import "context"

type EnrollmentWelcomeInput struct {
	Email        string
	Name         string
	CourseID     string
	CourseTitle  string
	EnrollmentID string
}

type Notifier interface {
	SendEnrollmentWelcome(ctx context.Context, in EnrollmentWelcomeInput) error
}

func welcomeSubject(in EnrollmentWelcomeInput) string {
	return "Welcome to " + in.CourseTitle
}

func welcomeBody(in EnrollmentWelcomeInput) string {
	return "Hi " + in.Name + ",\n\nYou are now enrolled in " + in.CourseTitle +
		". Jump in whenever you are ready; your progress is saved as you go.\n\nHappy learning!"
}
