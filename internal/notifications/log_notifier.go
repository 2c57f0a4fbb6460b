package notifications

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// LogNotifier writes notifications to the log instead of sending them.
// Delay and Fail simulate a slow or broken provider.
type LogNotifier struct {
	log   *slog.Logger
	Delay time.Duration
	Fail  bool
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendEnrollmentWelcome(ctx context.Context, in EnrollmentWelcomeInput) error {
	if n.Delay > 0 {
		select {
		case <-time.After(n.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if n.Fail {
		return errors.New("provider down (simulated)")
	}

	n.log.InfoContext(ctx, "notification.enrollment_welcome",
		"email", in.Email,
		"name", in.Name,
		"course_id", in.CourseID,
		"enrollment_id", in.EnrollmentID,
		"subject", welcomeSubject(in),
	)
	return nil
}
