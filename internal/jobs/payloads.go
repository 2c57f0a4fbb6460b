package jobs

// EnrollmentWelcomePayload is enqueued in the enrollment transaction.
// Keep payload ID-based; the worker loads user and course from the store.
type EnrollmentWelcomePayload struct {
	EnrollmentID string `json:"enrollmentId"`
	UserID       string `json:"userId"`
	CourseID     string `json:"courseId"`
	RequestID    string `json:"requestId,omitempty"` // optional: correlation
}

// CourseReconcilePayload asks the worker to recompute a course's derived fields.
type CourseReconcilePayload struct {
	CourseID  string `json:"courseId"`
	ActorID   string `json:"actorId,omitempty"` // empty when scheduled
	RequestID string `json:"requestId,omitempty"`
}

func WelcomeIdempotencyKey(enrollmentID string) string {
	return "enrollment:welcome:" + enrollmentID
}
