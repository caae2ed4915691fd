package oidcx

import (
	"errors"
	"net/http"
	"time"

	"github.com/tablechat/tablechat/pkg/cryptox"
)

const stateCookieName = "oauth_state"

// ErrStateMismatch is returned when the state returned by the provider
// doesn't match the one we bound to the user agent before the redirect.
var ErrStateMismatch = errors.New("oidcx: state mismatch")

// NewState generates an unguessable state value for a login attempt.
func NewState() (string, error) {
	return cryptox.GenerateToken(cryptox.TokenSize128)
}

// SetStateCookie binds the state to the user agent for the duration of the
// handshake. HttpOnly and SameSite=Lax keep it out of scripts while still
// surviving the top-level redirect back from the provider.
func SetStateCookie(w http.ResponseWriter, state string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// VerifyStateCookie compares the state query parameter against the cookie
// and clears the cookie either way so states are single-use.
func VerifyStateCookie(w http.ResponseWriter, r *http.Request) error {
	defer clearStateCookie(w)

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return ErrStateMismatch
	}
	if r.URL.Query().Get("state") != cookie.Value {
		return ErrStateMismatch
	}
	return nil
}

// ClearStateCookie drops any pending handshake state. Logout calls this so
// no session artifact outlives the tokens.
func ClearStateCookie(w http.ResponseWriter) {
	clearStateCookie(w)
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
