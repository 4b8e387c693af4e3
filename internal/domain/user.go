package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role values recognised by the marketplace. Everything else is rejected
// before it reaches the store.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// ValidRole reports whether role is one of the recognised marketplace roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User is the auth-relevant projection of a marketplace account.
// PasswordHash is only populated by the WithPassword store reads; default
// reads leave it empty so the hash cannot leak into a response by accident.
type User struct {
	ID                     uuid.UUID
	Name                   string
	Email                  string
	Photo                  string
	Role                   string
	PasswordHash           string
	PasswordChangedAt      *time.Time
	PasswordResetTokenHash *string
	PasswordResetExpiresAt *time.Time
	Active                 bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// PasswordChangedAfter reports whether the stored credential changed strictly
// after the given token issue time. A user who never changed their password
// has a nil PasswordChangedAt and every token stays fresh.
func (u User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	// JWT iat claims carry unix seconds, so compare at second precision.
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
