package dto

import "time"

// EnrollmentRequestPayload is submitted by a shopper without an account.
type EnrollmentRequestPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	CourseID string `json:"course_id"`
	Message  string `json:"message"`
}

// EnrollmentRequestResponse is a pending request.
type EnrollmentRequestResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CourseID  string    `json:"course_id"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalResponse describes an approved request. PasswordSetupSent is true
// when a set-password link was mailed to a newly created account.
type ApprovalResponse struct {
	User              UserResponse        `json:"user"`
	UserCreated       bool                `json:"user_created"`
	AlreadyEnrolled   bool                `json:"already_enrolled"`
	Assignment        *AssignmentResponse `json:"assignment,omitempty"`
	PasswordSetupSent bool                `json:"password_setup_sent"`
}

// AssignRequest is the admin payload for PUT /admin/assignments.
type AssignRequest struct {
	UserID       string  `json:"user_id"`
	CourseID     string  `json:"course_id"`
	ResourceLink *string `json:"resource_link"`
}

// ResourceLinkRequest is the payload for PUT /admin/assignments/resource-link.
type ResourceLinkRequest struct {
	UserID       string `json:"user_id"`
	CourseID     string `json:"course_id"`
	ResourceLink string `json:"resource_link"`
}

// UnassignRequest is the payload for DELETE /admin/assignments.
type UnassignRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

// AssignmentResponse is an enrollment record.
type AssignmentResponse struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	CourseID       string    `json:"course_id"`
	CourseTitle    string    `json:"course_title"`
	CourseCategory string    `json:"course_category"`
	CourseImage    string    `json:"course_image"`
	ResourceLink   *string   `json:"resource_link"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// MyCourseResponse is one dashboard entry.
type MyCourseResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Course     *CourseResponse    `json:"course"`
}

// ContactRequest is the contact form.
type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Query string `json:"query"`
}

// NewsletterRequest is the newsletter signup.
type NewsletterRequest struct {
	Email string `json:"email"`
}
