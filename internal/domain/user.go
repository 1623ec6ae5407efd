package domain

import "time"

// UserStatus represents lifecycle states for a shopper account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a registered shopper. EnrolledCourseIDs is read from the user's
// course assignments and is never written directly.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	Status            UserStatus
	Role              Role
	EnrolledCourseIDs []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAdmin reports whether the loaded role grants back-office access.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HasPassword is false for accounts provisioned by an admin approval.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// IsEnrolled reports whether courseID is in the user's enrolled list.
func (u *User) IsEnrolled(courseID string) bool {
	if u == nil {
		return false
	}
	for _, id := range u.EnrolledCourseIDs {
		if id == courseID {
			return true
		}
	}
	return false
}
