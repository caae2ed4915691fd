package http

import (
	"net/http"
	"strings"

	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/pkg/httpx"
	"github.com/tablechat/tablechat/pkg/oidcx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

// LogoutHandler serves POST /auth/logout. Both tokens of the session are
// revoked: the refresh token is removed from the store and the access token
// is blacklisted until it would have expired anyway. Logout succeeds even
// when the tokens are already dead, so retries are harmless.
type LogoutHandler struct {
	Auth *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Logout Endpoint
//	@Description	Revokes the presented access and refresh tokens
//	@Description	Idempotent, unknown or already-revoked tokens still return 200
//	@Tags			Auth
//	@Produce		json
//	@Param			Authorization	header	string	false	"Bearer access token"
//	@Param			Refresh			header	string	false	"refresh token"
//	@Success		200				"tokens revoked"
//	@Failure		503				{object}	httpx.ErrorBody	"revocation store unavailable"
//	@Router			/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accessToken := ""
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		accessToken = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	refreshToken := r.Header.Get("Refresh")

	if err := h.Auth.Logout(ctx, accessToken, refreshToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Info("logout complete")
	oidcx.ClearStateCookie(w)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
