package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/tablechat/tablechat/internal/auth/service"
	"github.com/tablechat/tablechat/pkg/httpx"
	"github.com/tablechat/tablechat/pkg/oidcx"
	"github.com/tablechat/tablechat/pkg/slogx"
)

// How long a login attempt may sit between redirect and callback.
const stateTTL = 10 * time.Minute

// FederatedHandler drives the federated login flow: the redirect leg sends
// the user to the provider, the callback leg redeems the code and issues
// the same token pair a local login would.
type FederatedHandler struct {
	Auth *service.AuthService

	// Providers maps the {provider} path segment to a configured relying
	// party, e.g. "google".
	Providers map[string]*oidcx.RelyingParty
}

// HandleRedirect godoc
//
//	@Summary		Federated Login Redirect Endpoint
//	@Description	Starts a federated login by redirecting to the provider's authorization endpoint
//	@Description	A single-use state value is bound to the user agent via cookie
//	@Tags			Auth
//	@Param			provider	path	string	true	"provider name, e.g. google"
//	@Success		302			"redirect to provider"
//	@Failure		404			{object}	httpx.ErrorBody	"unknown provider"
//	@Router			/auth/oauth2/{provider} [get].
func (h *FederatedHandler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	rp, ok := h.Providers[r.PathValue("provider")]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "no such login provider")
		return
	}

	state, err := oidcx.NewState()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	oidcx.SetStateCookie(w, state, stateTTL)
	http.Redirect(w, r, rp.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Federated Login Callback Endpoint
//	@Description	Redeems the provider's authorization code, verifies the id_token, provisions the account on first login, and issues a token pair
//	@Tags			Auth
//	@Produce		json
//	@Param			provider	path		string	true	"provider name, e.g. google"
//	@Param			code		query		string	true	"authorization code"
//	@Param			state		query		string	true	"state bound to the user agent"
//	@Success		200			{object}	domain.TokenPair
//	@Failure		401			{object}	httpx.ErrorBody	"handshake failed"
//	@Failure		404			{object}	httpx.ErrorBody	"unknown provider"
//	@Failure		409			{object}	httpx.ErrorBody	"email already registered locally"
//	@Router			/auth/oauth2/callback/{provider} [get].
func (h *FederatedHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	rp, ok := h.Providers[r.PathValue("provider")]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "no such login provider")
		return
	}

	// The provider may come back with an explicit error instead of a code.
	if errCode := r.URL.Query().Get("error"); errCode != "" {
		log.Warn("provider returned error", "provider", rp.Name(), "code", errCode)
		httpx.WriteError(w, http.StatusUnauthorized, "handshake_failed", "the provider rejected the login")
		return
	}

	if err := oidcx.VerifyStateCookie(w, r); err != nil {
		log.Warn("state verification failed", "provider", rp.Name())
		httpx.WriteError(w, http.StatusUnauthorized, "handshake_failed", "state verification failed")
		return
	}

	profile, err := rp.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		if errors.Is(err, oidcx.ErrHandshake) {
			log.Warn("code exchange failed", "provider", rp.Name(), "err", err)
			httpx.WriteError(w, http.StatusUnauthorized, "handshake_failed", "could not verify the provider response")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	pair, err := h.Auth.LoginFederated(ctx, service.FederatedProfile{
		Provider: profile.Provider,
		Subject:  profile.Subject,
		Email:    profile.Email,
		Name:     profile.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeTokenPair(w, pair)
}
