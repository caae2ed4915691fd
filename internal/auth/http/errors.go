package http

import (
	"errors"
	"net/http"

	"github.com/tablechat/tablechat/internal/auth/revocation"
	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/internal/auth/store"
	"github.com/tablechat/tablechat/pkg/httpx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

// writeServiceError maps service-layer failures onto the uniform error body.
// Anything unmapped is a 500 with no internal detail leaked.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenRevoked),
		errors.Is(err, service.ErrTokenInvalid):
		// One body for every token failure. The cause (expired, revoked,
		// malformed, bad signature) is for the logs, not the client.
		log.Warn("token rejected", "err", err)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email_taken", "email is already registered")
	case errors.Is(err, service.ErrNicknameTaken):
		httpx.WriteError(w, http.StatusConflict, "nickname_taken", "nickname is already in use")
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "no such account")
	case errors.Is(err, revocation.ErrUnavailable):
		log.Error("revocation store unavailable", "err", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "temporarily_unavailable", "please retry shortly")
	default:
		log.Error("unhandled service error", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
