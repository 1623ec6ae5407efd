package dto

import "time"

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordResetRequest asks for a reset token.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest sets a new password with a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest payload for PATCH /me.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// SetRoleRequest payload for PUT /admin/users/:id/role.
type SetRoleRequest struct {
	Role string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Role              string    `json:"role"`
	Status            string    `json:"status"`
	HasPassword       bool      `json:"has_password"`
	EnrolledCourseIDs []string  `json:"enrolled_course_ids"`
	CreatedAt         time.Time `json:"created_at"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	User     UserResponse `json:"user"`
	Auth     AuthResponse `json:"auth"`
	ResumeTo string       `json:"resume_to,omitempty"`
}
