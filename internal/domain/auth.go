package domain

import "time"

// Role is the privilege level recorded for a user in the role table.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	ExpiresAt time.Time
	IssuedAt  time.Time
}
