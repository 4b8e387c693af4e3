package http

import (
	"context"
	"net/http"

	"github.com/wayfarerhq/tours-api/internal/domain"
)

// Protect is the authentication gate for protected routes. The chain is:
// extract candidate token, verify signature and expiry, resolve the subject,
// check credential freshness, then hand the subject to the handler via the
// request context. Any failed step rejects with a 401.
func (h *Handler) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := h.transport.Extract(r)
		if !ok {
			status, code, msg := mapDomainError(domain.ErrMissingCredentials)
			logOperationError(r.Context(), "protect", status, code, domain.ErrMissingCredentials)
			writeError(w, status, code, msg)
			return
		}

		user, err := h.service.Authenticate(r.Context(), raw)
		if err != nil {
			status, code, msg := gatekeeperStatus(err)
			logOperationError(r.Context(), "protect", status, code, err)
			writeError(w, status, code, msg)
			if code == internalErrorCode && h.fatal != nil {
				h.fatal(err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithSubject(r.Context(), user)))
	})
}

// MaybeAuthenticate is the best-effort variant for routes where anonymous
// access is fine: it runs the same checks but swallows every failure and
// simply proceeds without a subject. It never writes an error.
func (h *Handler) MaybeAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := h.transport.Extract(r); ok {
			if user, err := h.service.Authenticate(r.Context(), raw); err == nil {
				r = r.WithContext(contextWithSubject(r.Context(), user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles authorizes an already-authenticated subject against an
// explicit ordered set of allowed roles. It must sit behind Protect; with no
// subject in context it rejects as unauthenticated rather than panicking.
func (h *Handler) RequireRoles(allowed []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := subjectFromContext(r.Context())
			if !ok {
				status, code, msg := mapDomainError(domain.ErrMissingCredentials)
				writeError(w, status, code, msg)
				return
			}
			for _, role := range allowed {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			status, code, msg := mapDomainError(domain.ErrRoleNotPermitted)
			logOperationError(r.Context(), "require_roles", status, code, domain.ErrRoleNotPermitted)
			writeError(w, status, code, msg)
		})
	}
}

func contextWithSubject(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, ctxKeySubject, user)
}

func subjectFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(ctxKeySubject).(domain.User)
	return user, ok
}
