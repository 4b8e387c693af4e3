package domain

import "fmt"

const (
	minPasswordLength = 8
	maxPasswordLength = 128
)

// ValidatePassword enforces the marketplace password policy. The policy is
// deliberately length-only: the expensive part of credential protection is the
// adaptive hash, not composition rules.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}
