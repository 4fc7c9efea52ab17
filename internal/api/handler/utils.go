package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AuthCookieName is the cookie checked after the Authorization header.
const AuthCookieName = "authToken"

// buildAuthCookie wraps a signed token in an HTTP-only cookie. The cookie
// max age is configured independently of the token's own expiry claim.
func buildAuthCookie(token string, maxAge time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge > 0 {
		ck.Expires = time.Now().Add(maxAge).UTC()
		ck.MaxAge = int(maxAge.Seconds())
	}
	return ck
}

// validID parses a path parameter as a UUID. Invalid identifiers are
// reported as not-found, the same as a well-formed id with no record.
func validID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
