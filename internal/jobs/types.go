package jobs

type JobType string

const (
	JobEnrollmentWelcome JobType = "enrollment.welcome"
	JobCourseReconcile   JobType = "course.reconcile"
)

// check to see if the job type is a known constant
func (t JobType) IsValid() bool {
	switch t {
	case JobEnrollmentWelcome, JobCourseReconcile:
		return true
	default:
		return false
	}
}

func (t JobType) String() string { return string(t) }
