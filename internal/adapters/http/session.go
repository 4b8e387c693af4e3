package http

import (
	"net/http"
	"strings"
	"time"
)

const sessionCookieName = "jwt"

// loggedOutSentinel replaces the cookie value on logout. Clearing must
// overwrite the value and backdate the expiry; a value-less cookie with a
// live expiry does not actually remove the session from the browser.
const loggedOutSentinel = "loggedout"

// SessionTransport moves the bearer token between requests/responses and the
// rest of the system. Extraction prefers the Authorization header; the jwt
// cookie is the fallback for browser clients.
type SessionTransport struct {
	cookieTTL time.Duration
	secure    bool
	nowFn     func() time.Time
}

func NewSessionTransport(cookieTTL time.Duration, secure bool, nowFn func() time.Time) *SessionTransport {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SessionTransport{cookieTTL: cookieTTL, secure: secure, nowFn: nowFn}
}

// Extract returns the candidate token and whether one was present. It never
// validates; that is the gatekeeper's job.
func (t *SessionTransport) Extract(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, prefix) {
		if token := strings.TrimSpace(strings.TrimPrefix(header, prefix)); token != "" {
			return token, true
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil &&
		cookie.Value != "" && cookie.Value != loggedOutSentinel {
		return cookie.Value, true
	}
	return "", false
}

// Attach sets the session cookie scoped to the cookie TTL. HttpOnly always;
// Secure only in production so local HTTP development keeps working.
func (t *SessionTransport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  t.nowFn().Add(t.cookieTTL),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear overwrites the cookie with the sentinel and an already-expired
// timestamp so browsers delete it.
func (t *SessionTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    loggedOutSentinel,
		Path:     "/",
		Expires:  t.nowFn().Add(-time.Hour),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
