package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// internalErrorCode marks responses whose cause is outside the operational
// taxonomy. Writers treat it as an unrecoverable fault.
const internalErrorCode = "INTERNAL_ERROR"

// mapDomainError is the single place operational errors become HTTP
// responses. Anything not in the taxonomy maps to a 500 and is treated as an
// internal fault by the caller.
func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusUnauthorized, "MISSING_CREDENTIALS", "you are not logged in, please log in to get access"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "incorrect email or password"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED", "session expired, please log in again"
	case errors.Is(err, domain.ErrStaleToken):
		return http.StatusUnauthorized, "STALE_TOKEN", "password was changed recently, please log in again"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "INVALID_TOKEN", "invalid session token"
	case errors.Is(err, domain.ErrRoleNotPermitted):
		return http.StatusForbidden, "FORBIDDEN", "you do not have permission to perform this action"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusBadRequest, "RESET_TOKEN_INVALID", "token is invalid or has expired"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusTooManyRequests, "ACCOUNT_LOCKED", "too many failed logins, account temporarily locked"
	case errors.Is(err, domain.ErrNotificationFailed):
		return http.StatusInternalServerError, "NOTIFICATION_FAILED", "there was an error sending the email, try again later"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND", "user not found"
	default:
		return http.StatusInternalServerError, internalErrorCode, "internal server error"
	}
}

// gatekeeperStatus narrows store-miss errors to 401 on protected routes: a
// token whose subject is gone is an authentication failure, not a 404.
func gatekeeperStatus(err error) (int, string, string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return http.StatusUnauthorized, "USER_NOT_FOUND", "the user belonging to this token no longer exists"
	}
	return mapDomainError(err)
}

// writeMappedError renders err through the taxonomy and answers the request.
// An error outside the taxonomy means the process may be unhealthy (store
// unreachable, invariant broken): the response is still served, then the
// fatal hook initiates shutdown so a supervisor restarts cleanly.
func (h *Handler) writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logOperationError(ctx, operation, status, code, err)
	writeError(w, status, code, msg)
	if code == internalErrorCode && h.fatal != nil {
		h.fatal(err)
	}
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	logOperationError(ctx, operation, http.StatusBadRequest, "VALIDATION_ERROR", err)
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}
