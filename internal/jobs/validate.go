package jobs

import "strings"

// ValidatePayload performs minimal validation on decoded payloads.
func ValidatePayload(t JobType, payload any) error {
	if !t.IsValid() {
		return ErrInvalidJobType
	}

	trim := func(s string) string { return strings.TrimSpace(s) }

	switch t {
	case JobEnrollmentWelcome:
		var p EnrollmentWelcomePayload
		switch v := payload.(type) {
		case EnrollmentWelcomePayload:
			p = v
		case *EnrollmentWelcomePayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.EnrollmentID) == "" || trim(p.UserID) == "" || trim(p.CourseID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	case JobCourseReconcile:
		var p CourseReconcilePayload
		switch v := payload.(type) {
		case CourseReconcilePayload:
			p = v
		case *CourseReconcilePayload:
			p = *v
		default:
			return ErrPayloadTypeMismatch
		}
		if trim(p.CourseID) == "" {
			return ErrInvalidJobPayload
		}
		return nil

	default:
		return ErrInvalidJobType
	}
}
