package application

import "time"

// Config is the immutable part of the credential lifecycle established at
// startup. Token lifetime lives with the issuer, not here.
type Config struct {
	FailedLoginThreshold int
	LockoutDuration      time.Duration
}

// SignupRequest carries the public registration fields. Role is not
// accepted from callers; every signup starts as a plain user.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type UpdateMeRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	// Password fields are deliberately absent. The handler rejects bodies
	// that try to smuggle them in.
}
