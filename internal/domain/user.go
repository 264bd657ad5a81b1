package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level carried in access tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account. PasswordHash never leaves the service layer.
// NewsletterOnly accounts were created by a newsletter signup and have an
// unusable password until they complete a password reset.
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	PasswordHash   string
	Role           Role
	Newsletter     bool
	NewsletterOnly bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Principal identifies the caller of an authenticated request.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// ProfileUpdate carries dashboard edits. Nil fields are left unchanged.
// Setting NewPassword requires CurrentPassword.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	Phone           *string
	CurrentPassword string
	NewPassword     string
}

// AuthResult is returned by every successful login path.
type AuthResult struct {
	Token string
	User  User
}
