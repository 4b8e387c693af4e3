package domain

import "errors"

var (
	// ErrInvalidInput covers request validation failures, including the
	// password/passwordConfirm mismatch.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredentials is returned when a protected route is hit with
	// no token at all.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials hides whether email or password failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	// ErrStaleToken is returned when a token was issued before the subject's
	// last password change.
	ErrStaleToken = errors.New("token issued before last password change")
	// ErrUserNotFound is returned when the token subject no longer exists or
	// forgot-password is asked about an unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotPermitted signals an authenticated subject whose role is not
	// in the allowed set for the route.
	ErrRoleNotPermitted = errors.New("role not permitted")
	// ErrResetTokenInvalid covers unknown, already-redeemed, and expired
	// password-reset tokens alike.
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
	// ErrNotificationFailed is surfaced after the pending reset state has
	// been rolled back.
	ErrNotificationFailed = errors.New("notification delivery failed")
	// ErrAccountLocked signals temporary lockout after repeated failed
	// login attempts.
	ErrAccountLocked = errors.New("account locked")
)
