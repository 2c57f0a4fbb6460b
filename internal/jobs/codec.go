package jobs

import (
	"encoding/json"
	"fmt"
)

// EncodePayload checks that payload matches t and marshals it.
func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobEnrollmentWelcome:
		switch payload.(type) {
		case EnrollmentWelcomePayload, *EnrollmentWelcomePayload:
		default:
			return nil, ErrPayloadTypeMismatch
		}

	case JobCourseReconcile:
		switch payload.(type) {
		case CourseReconcilePayload, *CourseReconcilePayload:
		default:
			return nil, ErrPayloadTypeMismatch
		}
	}

	if err := ValidatePayload(t, payload); err != nil {
		return nil, err
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals raw into the typed payload struct for t.
func DecodePayload(t JobType, raw []byte) (any, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(raw) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch t {
	case JobEnrollmentWelcome:
		var p EnrollmentWelcomePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, ValidatePayload(t, p)

	case JobCourseReconcile:
		var p CourseReconcilePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, ValidatePayload(t, p)

	default:
		return nil, ErrInvalidJobType
	}
}
