package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEnrollmentRequested      EventType = "enrollment_requested"
	EventEnrollmentRequestHandled EventType = "enrollment_request_handled"
	EventCourseAssigned           EventType = "course_assigned"
	EventResourceLinkSet          EventType = "resource_link_set"
	EventCheckoutCompleted        EventType = "checkout_completed"
	EventPasswordResetRequested   EventType = "password_reset_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EnrollmentRequestedPayload payload.
type EnrollmentRequestedPayload struct {
	RequestID   string `json:"request_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	Message     string `json:"message,omitempty"`
}

// EnrollmentRequestHandledPayload payload.
type EnrollmentRequestHandledPayload struct {
	RequestID   string `json:"request_id"`
	Email       string `json:"email"`
	CourseID    string `json:"course_id"`
	Approved    bool   `json:"approved"`
	UserID      string `json:"user_id,omitempty"`
	UserCreated bool   `json:"user_created"`
}

// CourseAssignedPayload payload.
type CourseAssignedPayload struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Source   string `json:"source"`
}

// ResourceLinkSetPayload payload.
type ResourceLinkSetPayload struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Link     string `json:"link"`
}

// CheckoutCompletedPayload payload.
type CheckoutCompletedPayload struct {
	UserID    string   `json:"user_id"`
	CourseIDs []string `json:"course_ids"`
	Total     string   `json:"total"`
	Currency  string   `json:"currency"`
}

// PasswordResetRequestedPayload carries the link mailed to the account owner.
type PasswordResetRequestedPayload struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ResetURL  string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}
