package domain

import "time"

// EnrollmentRequest is an inquiry submitted without an account.
type EnrollmentRequest struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CourseID  string
	Message   string
	CreatedAt time.Time
}

// AssignmentSource records what created an enrollment.
type AssignmentSource string

const (
	AssignmentSourceCheckout AssignmentSource = "CHECKOUT"
	AssignmentSourceAdmin    AssignmentSource = "ADMIN"
	AssignmentSourceRequest  AssignmentSource = "REQUEST"
)

// CourseAssignment is the durable record of which user can access which course.
// There is at most one per (UserID, CourseID).
type CourseAssignment struct {
	ID             string
	UserID         string
	CourseID       string
	CourseTitle    string
	CourseCategory string
	CourseImage    string
	ResourceLink   *string
	Source         AssignmentSource
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewCourseAssignment copies the display fields of course onto a new assignment.
func NewCourseAssignment(userID string, course Course, source AssignmentSource) *CourseAssignment {
	return &CourseAssignment{
		UserID:         userID,
		CourseID:       course.ID,
		CourseTitle:    course.Title,
		CourseCategory: course.Category,
		CourseImage:    course.Image,
		Source:         source,
	}
}

// NewsletterSubscription is one append-only signup.
type NewsletterSubscription struct {
	ID        string
	Email     string
	CreatedAt time.Time
}
